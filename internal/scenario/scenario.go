// Package scenario runs scripted mission walkthroughs against a mission service.
//
// A script declares missions by reference and a list of trigger steps:
//
//	missions:
//	  - ref: incident
//	    title: Investigate Incident
//	steps:
//	  - mission: incident
//	    trigger: assign
//	  - mission: incident
//	    trigger: approve
//	    expect: illegal_transition
//
// Every step yields an Outcome, so rejected triggers are reported instead of
// aborting the run.
package scenario

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/missions/pkg/domain"
	"github.com/aretw0/missions/pkg/ports"
	"gopkg.in/yaml.v3"
)

// Expectations that name an error kind instead of a state.
const (
	ExpectError             = "error"
	ExpectIllegalTransition = "illegal_transition"
	ExpectUnknownTrigger    = "unknown_trigger"
	ExpectNotFound          = "not_found"
)

// MissionDecl declares a mission created before the steps run.
type MissionDecl struct {
	Ref         string `yaml:"ref"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Step applies one trigger to a declared mission.
// Expect optionally names the resulting state or an error kind.
type Step struct {
	Mission string `yaml:"mission"`
	Trigger string `yaml:"trigger"`
	Expect  string `yaml:"expect,omitempty"`
}

// Script is a parsed scenario file.
type Script struct {
	Missions []MissionDecl `yaml:"missions"`
	Steps    []Step        `yaml:"steps"`
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a YAML script and checks its references.
func Parse(data []byte) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that refs are unique and that every step names a declared mission.
func (s *Script) Validate() error {
	refs := make(map[string]bool, len(s.Missions))
	for i, m := range s.Missions {
		if m.Ref == "" {
			return fmt.Errorf("mission #%d: ref is required", i+1)
		}
		if refs[m.Ref] {
			return fmt.Errorf("mission #%d: duplicate ref %q", i+1, m.Ref)
		}
		refs[m.Ref] = true
	}
	for i, st := range s.Steps {
		if !refs[st.Mission] {
			return fmt.Errorf("step #%d: unknown mission ref %q", i+1, st.Mission)
		}
		if st.Trigger == "" {
			return fmt.Errorf("step #%d: trigger is required", i+1)
		}
		if st.Expect != "" && !isErrorKind(st.Expect) {
			if _, err := domain.ParseState(st.Expect); err != nil {
				return fmt.Errorf("step #%d: invalid expect: %w", i+1, err)
			}
		}
	}
	return nil
}

// Outcome is the result of one step.
type Outcome struct {
	Step      int
	Ref       string
	MissionID string
	Trigger   string
	From      domain.State
	To        domain.State
	Err       error
	Expect    string
	Passed    bool
}

// Report collects the result of a run.
type Report struct {
	// IDs maps mission refs to the identifiers assigned at creation.
	IDs      map[string]string
	Refs     []string
	Outcomes []Outcome
}

// Failures counts the steps whose expectation was not met.
func (r *Report) Failures() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Passed {
			n++
		}
	}
	return n
}

// Run creates the declared missions and applies every step in order.
// Only creation failures and context cancellation abort the run.
func Run(ctx context.Context, svc ports.MissionService, s *Script) (*Report, error) {
	report := &Report{IDs: make(map[string]string, len(s.Missions))}
	for _, decl := range s.Missions {
		id, err := svc.Create(ctx, decl.Title, decl.Description)
		if err != nil {
			return report, fmt.Errorf("create %q: %w", decl.Ref, err)
		}
		report.IDs[decl.Ref] = id
		report.Refs = append(report.Refs, decl.Ref)
	}

	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		id := report.IDs[st.Mission]
		out := Outcome{
			Step:      i + 1,
			Ref:       st.Mission,
			MissionID: id,
			Trigger:   st.Trigger,
			Expect:    st.Expect,
		}

		if before, err := svc.Get(ctx, id); err == nil {
			out.From = before.State
		}
		out.To, out.Err = svc.Transition(ctx, id, domain.NormalizeTrigger(st.Trigger))
		out.Passed = meets(out, st.Expect)
		report.Outcomes = append(report.Outcomes, out)
	}
	return report, nil
}

// meets reports whether the outcome matches expect. Without an expectation a
// step passes when the trigger was accepted.
func meets(o Outcome, expect string) bool {
	switch strings.ToLower(expect) {
	case "":
		return o.Err == nil
	case ExpectError:
		return o.Err != nil
	case ExpectIllegalTransition:
		return errors.Is(o.Err, domain.ErrIllegalTransition)
	case ExpectUnknownTrigger:
		return errors.Is(o.Err, domain.ErrUnknownTrigger)
	case ExpectNotFound:
		return errors.Is(o.Err, domain.ErrMissionNotFound)
	}
	want, err := domain.ParseState(expect)
	return err == nil && o.Err == nil && o.To == want
}

func isErrorKind(expect string) bool {
	switch strings.ToLower(expect) {
	case ExpectError, ExpectIllegalTransition, ExpectUnknownTrigger, ExpectNotFound:
		return true
	}
	return false
}
