// Command trendline persists analysis issues and measures and reports their trends.
package main

import (
	"github.com/huangsam/trendline/cmd"
	"github.com/huangsam/trendline/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("trendline failed", err)
	}
}
