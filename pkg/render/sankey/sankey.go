// Package sankey adapts aggregated flow results into a flow-volume
// diagram payload.
//
// The external results engine reports, for every (source, target) flow,
// a time series of magnitudes. Build turns those series into weighted
// directed links between the system's busses and their connected
// components: node labels in first-seen order plus three equal-length
// index/value arrays, the structure flow-diagram front ends consume.
package sankey

import (
	"encoding/json"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/enerviz/pkg/energy"
)

// Flow identifies one directed flow between two labeled nodes.
type Flow struct {
	Source string
	Target string
}

// Results is the external results table: a time series of magnitudes
// per flow.
type Results map[Flow][]float64

// AllTimesteps selects the sum over the whole series instead of a
// single time slice.
const AllTimesteps = -1

// Payload is a serializable flow-volume diagram. Sources and Targets
// index into Labels; the three arrays have equal length, one entry per
// link.
type Payload struct {
	Labels  []string  `json:"labels"`
	Sources []int     `json:"sources"`
	Targets []int     `json:"targets"`
	Values  []float64 `json:"values"`
}

// Build walks every bus in the system and produces one link per bus
// connection: producer → bus for inputs, bus → consumer for outputs.
// Labels are indexed in first-seen order.
//
// With ts == AllTimesteps a link's value is the sum over its full
// series; otherwise it is the value at index ts. A flow absent from the
// results table contributes zero, as does a ts beyond the end of a
// series; neither is an error.
func Build(system *energy.System, results Results, ts int, logger *log.Logger) Payload {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	p := Payload{}
	index := make(map[string]int)

	labelIndex := func(label string) int {
		if i, ok := index[label]; ok {
			return i
		}
		i := len(p.Labels)
		index[label] = i
		p.Labels = append(p.Labels, label)
		return i
	}

	link := func(from, to string) {
		p.Sources = append(p.Sources, labelIndex(from))
		p.Targets = append(p.Targets, labelIndex(to))
		p.Values = append(p.Values, flowValue(results, Flow{Source: from, Target: to}, ts, logger))
	}

	for _, bus := range system.Busses() {
		labelIndex(bus.Label)
		for _, producer := range bus.Inputs {
			link(producer.Label, bus.Label)
		}
		for _, consumer := range bus.Outputs {
			link(bus.Label, consumer.Label)
		}
	}

	return p
}

func flowValue(results Results, f Flow, ts int, logger *log.Logger) float64 {
	series, ok := results[f]
	if !ok {
		logger.Debug("no results for flow, using zero", "source", f.Source, "target", f.Target)
		return 0
	}

	if ts == AllTimesteps {
		sum := 0.0
		for _, v := range series {
			sum += v
		}
		return sum
	}

	if ts < 0 || ts >= len(series) {
		logger.Warn("time index outside series, using zero",
			"source", f.Source, "target", f.Target, "ts", ts, "len", len(series))
		return 0
	}
	return series[ts]
}

// Marshal returns the payload as indented JSON.
func (p Payload) Marshal() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// =============================================================================
// Results document
// =============================================================================

// resultsJSON is the wire format for a results table.
type resultsJSON struct {
	Flows []flowJSON `json:"flows"`
}

type flowJSON struct {
	Source string    `json:"source"`
	Target string    `json:"target"`
	Series []float64 `json:"series"`
}

// ReadResults decodes a JSON results document.
func ReadResults(r io.Reader) (Results, error) {
	var doc resultsJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	results := make(Results, len(doc.Flows))
	for _, f := range doc.Flows {
		results[Flow{Source: f.Source, Target: f.Target}] = f.Series
	}
	return results, nil
}
