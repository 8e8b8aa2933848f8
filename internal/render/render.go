// Package render formats scenario reports for the terminal and for JSON
// consumers.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/mesh-intelligence/consist/internal/scenario"
	"github.com/mesh-intelligence/consist/pkg/consist"
	"github.com/mesh-intelligence/consist/pkg/types"
)

// Wagon returns the short label of a wagon, e.g. "[Wagon-8001]".
func Wagon(w types.Wagon) string {
	return fmt.Sprintf("[Wagon-%d]", w.ID)
}

// Locomotive returns the short label of a locomotive, e.g. "[Loc-3667]".
func Locomotive(l types.Locomotive) string {
	return fmt.Sprintf("[Loc-%d]", l.Number)
}

// Train returns the locomotive, the wagons front to rear and the route on
// one line: "[Loc-1][Wagon-8001][Wagon-8002] from Amsterdam to Paris".
func Train(t *consist.Train) string {
	var b strings.Builder
	b.WriteString(Locomotive(t.Engine()))
	for _, w := range t.Wagons() {
		b.WriteString(Wagon(w))
	}
	fmt.Fprintf(&b, " from %s to %s", t.Origin(), t.Destination())
	return b.String()
}

// Summary returns the counts line for a train.
func Summary(t *consist.Train) string {
	kind, ok := t.Kind()
	switch {
	case !ok:
		return fmt.Sprintf("empty, locomotive pulls %d", t.Engine().MaxWagons)
	case kind == types.KindPassenger:
		return fmt.Sprintf("%d/%d passenger wagons, %d seats", t.WagonCount(), t.Engine().MaxWagons, t.TotalSeats())
	default:
		return fmt.Sprintf("%d/%d freight wagons, max weight %d", t.WagonCount(), t.Engine().MaxWagons, t.TotalMaxWeight())
	}
}

// Step status colors, ANSI palette indexes.
const (
	colorOK       = "2"
	colorRejected = "3"
)

// Text writes the step outcomes, if any, followed by every train. Step
// status is colored when the writer is a color terminal; opts override the
// detected profile.
func Text(w io.Writer, rep *scenario.Report, opts ...termenv.OutputOption) error {
	out := termenv.NewOutput(w, opts...)
	if rep.Scenario != "" {
		if _, err := fmt.Fprintf(w, "scenario %s\n", rep.Scenario); err != nil {
			return err
		}
	}
	for _, st := range rep.Steps {
		status, color := "ok", colorOK
		if !st.OK {
			status, color = "rejected", colorRejected
		}
		label := out.String(fmt.Sprintf("%-8s", status)).Foreground(out.Color(color))
		if _, err := fmt.Fprintf(w, "%3d %s %s: %s\n", st.Index, label, st.Train, st.Detail); err != nil {
			return err
		}
	}
	for _, nt := range rep.Trains {
		if _, err := fmt.Fprintf(w, "%s: %s\n    %s\n", nt.Name, Train(nt.Train), Summary(nt.Train)); err != nil {
			return err
		}
	}
	return nil
}

// TrainView is the JSON form of a train.
type TrainView struct {
	Name           string           `json:"name"`
	ID             string           `json:"id"`
	Origin         string           `json:"origin"`
	Destination    string           `json:"destination"`
	Engine         types.Locomotive `json:"engine"`
	Kind           types.WagonKind  `json:"kind,omitempty"`
	WagonCount     int              `json:"wagon_count"`
	TotalSeats     int              `json:"total_seats"`
	TotalMaxWeight int              `json:"total_max_weight"`
	Wagons         []types.Wagon    `json:"wagons"`
}

// ReportView is the JSON form of a report.
type ReportView struct {
	Scenario string                `json:"scenario,omitempty"`
	Steps    []scenario.StepResult `json:"steps"`
	Trains   []TrainView           `json:"trains"`
}

// View converts a report into its JSON form.
func View(rep *scenario.Report) ReportView {
	v := ReportView{
		Scenario: rep.Scenario,
		Steps:    rep.Steps,
		Trains:   make([]TrainView, 0, len(rep.Trains)),
	}
	if v.Steps == nil {
		v.Steps = []scenario.StepResult{}
	}
	for _, nt := range rep.Trains {
		t := nt.Train
		kind, _ := t.Kind()
		tv := TrainView{
			Name:           nt.Name,
			ID:             t.ID(),
			Origin:         t.Origin(),
			Destination:    t.Destination(),
			Engine:         t.Engine(),
			Kind:           kind,
			WagonCount:     t.WagonCount(),
			TotalSeats:     t.TotalSeats(),
			TotalMaxWeight: t.TotalMaxWeight(),
			Wagons:         []types.Wagon{},
		}
		for _, w := range t.Wagons() {
			tv.Wagons = append(tv.Wagons, w)
		}
		v.Trains = append(v.Trains, tv)
	}
	return v
}

// JSON writes the report as an indented JSON document.
func JSON(w io.Writer, rep *scenario.Report) error {
	out, err := json.MarshalIndent(View(rep), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
