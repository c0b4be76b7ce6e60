package main

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fuseviz/fuseviz/internal/importer"
)

// detectTool guesses the source tool from the file name, falling back to a
// peek at the header line. The library facade always requires an explicit
// tool tag; detection is a CLI convenience only.
func detectTool(path string) (importer.Tool, error) {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".gz") {
		name = name[:len(name)-3]
	}

	if strings.Contains(name, "star-fusion") || strings.HasSuffix(name, ".fusion_predictions.tsv") ||
		strings.HasSuffix(name, ".fusion_predictions.abridged.tsv") {
		return importer.ToolSTARFusion, nil
	}
	if strings.Contains(name, "defuse") || strings.HasSuffix(name, "results.filtered.tsv") {
		return importer.ToolDeFuse, nil
	}

	header, err := peekHeader(path)
	if err != nil {
		return "", fmt.Errorf("detect fusion tool for %s: %w", path, err)
	}

	if strings.Contains(header, "FusionName") && strings.Contains(header, "LeftBreakpoint") {
		return importer.ToolSTARFusion, nil
	}
	if strings.Contains(header, "cluster_id") && strings.Contains(header, "splitr_sequence") {
		return importer.ToolDeFuse, nil
	}

	return "", fmt.Errorf("cannot detect fusion tool for %s", path)
}

// peekHeader reads the first line of a possibly gzipped file.
func peekHeader(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var r io.Reader = file

	buf := make([]byte, 2)
	if _, err := file.Read(buf); err != nil {
		return "", err
	}
	if _, err := file.Seek(0, 0); err != nil {
		return "", err
	}
	if buf[0] == 0x1f && buf[1] == 0x8b {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return "", err
		}
		defer gz.Close()
		r = gz
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return line, nil
}
