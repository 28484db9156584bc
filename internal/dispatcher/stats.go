package dispatcher

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"yqhp/math-engine/internal/expression"
)

// 直方图范围：1µs ~ 1min，3 位有效数字
const (
	histogramMin     = 1
	histogramMax     = int64(time.Minute / time.Microsecond)
	histogramSigFigs = 3
)

// Stats 聚合每次调度的耗时与结果分布
type Stats struct {
	mu sync.Mutex

	parse *hdrhistogram.Histogram
	eval  *hdrhistogram.Histogram
	total *hdrhistogram.Histogram

	count     int64
	fallbacks int64
	byKind    map[expression.ResultKind]int64
	byEngine  map[Mode]int64
}

// NewStats 创建统计器
func NewStats() *Stats {
	return &Stats{
		parse:    hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
		eval:     hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
		total:    hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
		byKind:   make(map[expression.ResultKind]int64),
		byEngine: make(map[Mode]int64),
	}
}

// Record 记录一次调度
func (s *Stats) Record(o *Outcome) {
	if o == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	s.byKind[o.Result.Kind]++
	if o.Evaluated {
		s.byEngine[o.Engine]++
	}
	if o.FellBack {
		s.fallbacks++
	}

	recordDuration(s.parse, o.ParseTime)
	if o.Evaluated {
		recordDuration(s.eval, o.EvaluationTime)
	}
	recordDuration(s.total, o.TotalTime)
}

// recordDuration 超出范围的值截断到边界
func recordDuration(h *hdrhistogram.Histogram, d time.Duration) {
	us := d.Microseconds()
	if us < histogramMin {
		us = histogramMin
	}
	if us > histogramMax {
		us = histogramMax
	}
	_ = h.RecordValue(us)
}

// Count 返回调度总次数
func (s *Stats) Count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Fallbacks 返回回退到符号引擎的次数
func (s *Stats) Fallbacks() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallbacks
}

// KindCount 返回指定结果类型的次数
func (s *Stats) KindCount(kind expression.ResultKind) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byKind[kind]
}

// EngineCount 返回指定引擎实际执行的次数
func (s *Stats) EngineCount(mode Mode) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byEngine[mode]
}

// IsEmpty 检查是否为空
func (s *Stats) IsEmpty() bool {
	return s.Count() == 0
}

// Format 返回格式化的统计结果，耗时单位为毫秒
func (s *Stats) Format() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := map[string]float64{
		"count":     float64(s.count),
		"fallbacks": float64(s.fallbacks),
	}
	for kind, n := range s.byKind {
		result["result."+kind.String()] = float64(n)
	}

	formatHistogram(result, "parse", s.parse)
	formatHistogram(result, "eval", s.eval)
	formatHistogram(result, "total", s.total)
	return result
}

func formatHistogram(result map[string]float64, prefix string, h *hdrhistogram.Histogram) {
	if h.TotalCount() == 0 {
		return
	}
	result[prefix+".avg"] = h.Mean() / 1000
	result[prefix+".min"] = float64(h.Min()) / 1000
	result[prefix+".max"] = float64(h.Max()) / 1000
	result[prefix+".p(50)"] = float64(h.ValueAtQuantile(50)) / 1000
	result[prefix+".p(95)"] = float64(h.ValueAtQuantile(95)) / 1000
	result[prefix+".p(99)"] = float64(h.ValueAtQuantile(99)) / 1000
}

// Reset 清空统计
func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.parse.Reset()
	s.eval.Reset()
	s.total.Reset()
	s.count = 0
	s.fallbacks = 0
	s.byKind = make(map[expression.ResultKind]int64)
	s.byEngine = make(map[Mode]int64)
}
