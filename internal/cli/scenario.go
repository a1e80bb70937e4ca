package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/booking-ledger/internal/model"
	"github.com/iliyamo/booking-ledger/internal/service"
)

// Scenario is a scripted sequence of ledger operations with expected
// outcomes.  Scenarios run against a pinned clock so their transcripts are
// reproducible.
type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Clock       time.Time `yaml:"clock"`
	Steps       []Step    `yaml:"steps"`
}

// Step is one operation.  Op selects which of the other fields matter.
// Expect is "ok" (the default) or the error kind the step must fail with.
type Step struct {
	Op          string `yaml:"op"`
	ID          uint64 `yaml:"id"`
	Resource    string `yaml:"resource"`
	Requester   string `yaml:"requester"`
	Actor       string `yaml:"actor"`
	Start       uint64 `yaml:"start"`
	End         uint64 `yaml:"end"`
	Price       string `yaml:"price"`
	Status      string `yaml:"status"`
	EscrowRef   string `yaml:"escrow_ref"`
	ContractRef string `yaml:"contract_ref"`
	Listing     string `yaml:"listing"`
	Owner       string `yaml:"owner"`
	DataHash    string `yaml:"data_hash"`
	Reviewer    string `yaml:"reviewer"`
	Target      string `yaml:"target"`
	Rating      int    `yaml:"rating"`
	Comment     string `yaml:"comment"`
	Advance     string `yaml:"advance"`
	Expect      string `yaml:"expect"`
}

// StepResult records the outcome of a step.
type StepResult struct {
	N       int    `json:"n"`
	Op      string `json:"op"`
	Outcome string `json:"outcome"`
	Want    string `json:"want"`
	Pass    bool   `json:"pass"`
}

// ScenarioResult is the transcript of a scenario run.
type ScenarioResult struct {
	Name   string       `json:"name"`
	Steps  []StepResult `json:"steps"`
	Failed int          `json:"failed"`
}

// LoadScenario parses a scenario file.  Unknown keys are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &sc, nil
}

// RunScenario executes sc against the ledger at dbPath.  A step whose
// outcome differs from its expectation is recorded as failed and the run
// continues.
func RunScenario(ctx context.Context, dbPath string, sc *Scenario) (*ScenarioResult, error) {
	start := sc.Clock
	if start.IsZero() {
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	clock := service.NewManualClock(start)
	l, err := openLedger(ctx, dbPath, clock)
	if err != nil {
		return nil, err
	}
	defer l.Close()

	res := &ScenarioResult{Name: sc.Name}
	for i, st := range sc.Steps {
		outcome, err := l.apply(ctx, clock, st)
		if err != nil {
			outcome = model.ErrorKind(err)
			if outcome == "Internal" {
				return nil, fmt.Errorf("step %d (%s): %w", i+1, st.Op, err)
			}
		}
		want := st.Expect
		if want == "" {
			want = "ok"
		}
		got := "ok"
		if err != nil {
			got = outcome
		}
		sr := StepResult{N: i + 1, Op: st.Op, Outcome: outcome, Want: want, Pass: got == want}
		if !sr.Pass {
			res.Failed++
		}
		res.Steps = append(res.Steps, sr)
	}
	return res, nil
}

// apply runs one step and describes its result.
func (l *ledger) apply(ctx context.Context, clock *service.ManualClock, st Step) (string, error) {
	switch st.Op {
	case "advance":
		d, err := time.ParseDuration(st.Advance)
		if err != nil {
			return "", fmt.Errorf("advance %q: %w", st.Advance, err)
		}
		clock.Advance(d)
		return "clock=" + clock.Now().Format(time.RFC3339), nil

	case "listing_create":
		li, err := l.listings.CreateListing(ctx, st.Listing, st.DataHash, st.Owner)
		if err != nil {
			return "", err
		}
		return formatListing(li), nil
	case "listing_update":
		li, err := l.listings.UpdateListing(ctx, st.Listing, st.DataHash, st.Owner)
		if err != nil {
			return "", err
		}
		return formatListing(li), nil
	case "listing_status":
		li, err := l.listings.UpdateListingStatus(ctx, st.Listing, st.Owner, model.ListingStatus(strings.ToUpper(st.Status)))
		if err != nil {
			return "", err
		}
		return formatListing(li), nil

	case "book":
		price, err := model.ParseAmount(st.Price)
		if err != nil {
			return "", fmt.Errorf("price %q: %w", st.Price, model.ErrInvalidPrice)
		}
		id, err := l.bookings.Create(ctx, service.CreateBookingInput{
			ResourceID: st.Resource, RequesterID: st.Requester, Start: st.Start, End: st.End, TotalPrice: price,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("id=%d", id), nil
	case "get":
		res, err := l.bookings.Get(ctx, st.ID)
		if err != nil {
			return "", err
		}
		return formatReservation(res), nil
	case "avail":
		free, err := l.bookings.CheckAvailability(ctx, st.Resource, st.Start, st.End)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("available=%t", free), nil
	case "list":
		list, err := l.bookings.ListByResource(ctx, st.Resource)
		if err != nil {
			return "", err
		}
		parts := make([]string, len(list))
		for i, r := range list {
			parts[i] = fmt.Sprintf("%d:%s", r.ID, r.Status)
		}
		return "[" + strings.Join(parts, " ") + "]", nil
	case "cancel":
		if _, err := l.bookings.Cancel(ctx, st.ID, st.Requester); err != nil {
			return "", err
		}
		return fmt.Sprintf("cancelled %d", st.ID), nil
	case "status":
		next, err := model.ParseStatus(st.Status)
		if err != nil {
			return "", err
		}
		res, err := l.bookings.UpdateStatus(ctx, st.ID, next, st.Actor)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("status=%s", res.Status), nil
	case "escrow":
		if _, err := l.bookings.SetEscrow(ctx, st.ID, st.EscrowRef, st.ContractRef); err != nil {
			return "", err
		}
		return "escrow=" + st.EscrowRef, nil

	case "review":
		rv, err := l.reviews.Submit(ctx, service.SubmitReviewInput{
			BookingID: st.ID, Reviewer: st.Reviewer, Target: st.Target, Rating: st.Rating, Comment: st.Comment,
		})
		if err != nil {
			return "", err
		}
		return formatReview(rv), nil
	case "reputation":
		score, err := l.reviews.Reputation(ctx, st.Target)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("reputation=%d", score), nil
	}
	return "", fmt.Errorf("unknown op %q: %w", st.Op, model.ErrInvalidInput)
}

// Transcript renders res as text, one line per step and a summary.
func (res *ScenarioResult) Transcript() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario %s\n", res.Name)
	for _, st := range res.Steps {
		mark := "ok  "
		if !st.Pass {
			mark = "FAIL"
		}
		fmt.Fprintf(&b, "%s %2d %-14s %s", mark, st.N, st.Op, st.Outcome)
		if !st.Pass {
			fmt.Fprintf(&b, " (want %s)", st.Want)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%d steps, %d failed\n", len(res.Steps), res.Failed)
	return b.String()
}
