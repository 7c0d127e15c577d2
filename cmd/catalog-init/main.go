package main

import (
	"fmt"
	"time"

	"github.com/petrarca/code-pattern-analyzer/internal/matcher"
	"github.com/petrarca/code-pattern-analyzer/internal/rules"
	"github.com/petrarca/code-pattern-analyzer/internal/samples"
)

func main() {
	start := time.Now()

	t1 := time.Now()
	catalog, err := rules.Default()
	if err != nil {
		panic(err)
	}
	fmt.Printf("LoadCatalog: %v (%d rules, version %s)\n", time.Since(t1), catalog.Len(), catalog.Version())

	t2 := time.Now()
	if _, err := rules.DefaultHeuristics(); err != nil {
		panic(err)
	}
	fmt.Printf("LoadHeuristics: %v\n", time.Since(t2))

	t3 := time.Now()
	seeds, err := rules.DefaultSeedCatalog()
	if err != nil {
		panic(err)
	}
	fmt.Printf("LoadSeedCatalog: %v (%d seeds)\n", time.Since(t3), len(seeds))

	t4 := time.Now()
	registry, err := matcher.DefaultRegistry(catalog, seeds)
	if err != nil {
		panic(err)
	}
	fmt.Printf("BuildRegistry: %v (%v)\n", time.Since(t4), registry.Names())

	for _, name := range registry.Names() {
		engine, err := matcher.NewEngine(registry, matcher.Options{Strategy: name})
		if err != nil {
			panic(err)
		}
		t := time.Now()
		findings := 0
		for _, lang := range samples.Languages() {
			result := engine.AnalyzeAs(samples.For(lang), "", lang)
			findings += result.Findings.Len()
		}
		fmt.Printf("Analyze samples [%s]: %v (%d findings)\n", name, time.Since(t), findings)
	}

	fmt.Printf("\nTotal init: %v\n", time.Since(start))
}
