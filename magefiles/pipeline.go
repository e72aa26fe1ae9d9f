//go:build mage

package main

import (
	"path/filepath"
	"strconv"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Pipeline groups the data pipeline targets. Each target runs the CLI
// built by Build with the paths used by Init.
type Pipeline mg.Namespace

const (
	publicationsCSV = "data/publications.csv"
	researchersCSV  = "data/researchers.csv"
)

func cli(args ...string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Collect harvests Brazilian computer science articles from OpenAlex for
// 2015 through 2024.
func (Pipeline) Collect() error {
	mg.Deps(Init)
	args := []string{"collect", "--out", publicationsCSV}
	for y := 2015; y <= 2024; y++ {
		args = append(args, "--year", strconv.Itoa(y))
	}
	return cli(args...)
}

// Full builds the full OpenAlex network and its highly cited variant.
func (Pipeline) Full() error {
	if err := cli("build", "--in", publicationsCSV, "--out", "data/graphs/open_alex/full_network.gexf"); err != nil {
		return err
	}
	return cli("build", "--in", publicationsCSV, "--min-citations", "100",
		"--out", "data/graphs/open_alex/full_network_top_citations.gexf")
}

// Subfields builds one OpenAlex network per subfield.
func (Pipeline) Subfields() error {
	return cli("partition", "--in", publicationsCSV, "--out-dir", "data/graphs/open_alex", "--workers", "4")
}

// Csindex downloads the researcher catalog and builds every sub-area
// network from DBLP.
func (Pipeline) Csindex() error {
	mg.Deps(Init)
	if err := cli("researchers", "--out", researchersCSV); err != nil {
		return err
	}
	return cli("subarea", "--researchers", researchersCSV, "--out-dir", "data/graphs/csindex",
		"--metrics-file", "data/metrics/csindex.prom")
}
