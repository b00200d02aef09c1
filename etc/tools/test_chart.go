package main

import (
	"fmt"
	"os"
	"path/filepath"

	"sales-chart/internal/features/charts"
	"sales-chart/internal/features/sales"
)

// go run etc/tools/test_chart.go
// in etc/charts/<engine>_<style>.png
func main() {
	fmt.Println("Generating test charts...")

	table, err := sales.Generate(sales.DefaultParams())
	if err != nil {
		fmt.Printf("Error generating data: %v\n", err)
		os.Exit(1)
	}

	for _, engine := range []string{charts.EngineGG, charts.EngineGoChart} {
		renderer, err := charts.New(engine)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		for _, style := range []string{"whitegrid", "darkgrid", "ticks"} {
			opts := charts.DefaultOptions()
			opts.Style = style
			path := filepath.Join("etc", "charts", engine+"_"+style+".png")
			if err := charts.Save(path, renderer, table.Series(), opts); err != nil {
				fmt.Printf("Error generating chart: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Chart generated successfully: %s\n", path)
		}
	}
	fmt.Println("Open the files to see the result!")
}
