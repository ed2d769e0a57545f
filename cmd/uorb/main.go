// Package main 提供 uorb 命令行入口
package main

import (
	"fmt"
	"os"

	"github.com/dep2p/go-uorb/pkg/lib/log"
)

var logger = log.Logger("uorb/cmd")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
