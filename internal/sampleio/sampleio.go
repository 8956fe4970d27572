// Package sampleio reads the external sample file format: a first line of
// `<n_samples> <n_symbols>` followed by one line per trace of the form
// `<label> <event_count> <symbol_id>:<time> ...`.
package sampleio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	errorutil "github.com/projectdiscovery/utils/errors"

	"github.com/projectdiscovery/drtalearn/trace"
)

// Header is the sample file's declared trace and symbol-alphabet counts.
// Both are returned as parsed and are not checked against the body; the
// real counts come from the parsed body.
type Header struct {
	NumSamples int
	NumSymbols int
}

// Read parses the external sample file format from r. Lines with fewer than
// three whitespace-separated tokens are skipped rather than rejected.
func Read(r io.Reader) (Header, []trace.Sample, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return Header{}, nil, errorutil.NewWithTag("sampleio", "empty input, expected a header line")
	}
	header, err := parseHeader(scanner.Text())
	if err != nil {
		return Header{}, nil, err
	}

	var samples []trace.Sample
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}

		s, err := parseSample(fields)
		if err != nil {
			return Header{}, nil, fmt.Errorf("sampleio: line %d: %w", lineNo, err)
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return Header{}, nil, fmt.Errorf("sampleio: reading input: %w", err)
	}

	return header, samples, nil
}

func parseHeader(line string) (Header, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Header{}, fmt.Errorf("sampleio: malformed header %q, expected '<n_samples> <n_symbols>'", line)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return Header{}, fmt.Errorf("sampleio: malformed sample count %q: %w", fields[0], err)
	}
	m, err := strconv.Atoi(fields[1])
	if err != nil {
		return Header{}, fmt.Errorf("sampleio: malformed symbol count %q: %w", fields[1], err)
	}
	return Header{NumSamples: n, NumSymbols: m}, nil
}

func parseSample(fields []string) (trace.Sample, error) {
	labelVal, err := strconv.Atoi(fields[0])
	if err != nil || (labelVal != 0 && labelVal != 1) {
		return trace.Sample{}, fmt.Errorf("malformed label %q, expected 0 or 1", fields[0])
	}

	count, err := strconv.Atoi(fields[1])
	if err != nil {
		return trace.Sample{}, fmt.Errorf("malformed event count %q: %w", fields[1], err)
	}

	events := fields[2:]
	if len(events) < count {
		return trace.Sample{}, fmt.Errorf("declared %d events but only %d present", count, len(events))
	}

	tr := make(trace.Trace, 0, count)
	for _, tok := range events[:count] {
		symbolID, t, err := parseEvent(tok)
		if err != nil {
			return trace.Sample{}, err
		}
		tr = append(tr, trace.Event{Symbol: symbolID, Time: t})
	}

	return trace.Sample{Trace: tr, Label: labelVal == 1}, nil
}

func parseEvent(tok string) (string, float64, error) {
	parts := strings.SplitN(tok, ":", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("malformed event token %q, expected '<symbol_id>:<time>'", tok)
	}
	if _, err := strconv.Atoi(parts[0]); err != nil {
		return "", 0, fmt.Errorf("malformed symbol id %q: %w", parts[0], err)
	}
	t, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed event time %q: %w", parts[1], err)
	}
	if t < 0 {
		return "", 0, fmt.Errorf("negative event time %g", t)
	}
	return parts[0], t, nil
}
