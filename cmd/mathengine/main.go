// Package main 是 mathengine CLI 的入口
package main

import "yqhp/math-engine/cmd"

func main() {
	cmd.Execute()
}
