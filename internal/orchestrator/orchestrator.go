// Package orchestrator drives one phase invocation end-to-end (spec.md
// §4.8): acquire lock, build packet, run the backend, persist outputs,
// write a receipt, release the lock. It is the only component that
// touches every other subsystem.
package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/specforge/specforge/internal/artifact"
	"github.com/specforge/specforge/internal/llm"
	"github.com/specforge/specforge/internal/lock"
	"github.com/specforge/specforge/internal/model"
	"github.com/specforge/specforge/internal/packet"
	"github.com/specforge/specforge/internal/phase"
	"github.com/specforge/specforge/internal/receipt"
	"github.com/specforge/specforge/internal/redact"
	"github.com/specforge/specforge/internal/runner"
	"github.com/specforge/specforge/internal/specerr"
	"github.com/specforge/specforge/internal/spec"
	"github.com/specforge/specforge/internal/workspace"
)

// Options configures one RunPhase invocation.
type Options struct {
	DryRun      bool
	DebugPacket bool
	Force       bool
	LockTTL     time.Duration
	RunnerInv   runner.Invocation // Binary/Args/Mode/Distro/Timeout; Stdin is set internally
	Backend     llm.Backend       // nil defaults to a subprocess backend built from RunnerInv
	Model       model.Identity
	Strict      bool

	// PacketBudget overrides the default byte/line limits when its
	// limits are non-zero (configured via packet.limit_bytes/limit_lines).
	PacketBudget spec.PacketBudget
}

// Outcome is what RunPhase returns on success.
type Outcome struct {
	Receipt   spec.Receipt
	Artifacts []spec.Artifact
}

// Orchestrator binds one spec's workspace paths to the managers that
// read and write it.
type Orchestrator struct {
	Paths     workspace.Paths
	Redactor  *redact.Redactor
	Receipts  *receipt.Manager
	Artifacts *artifact.Manager
}

// New constructs an Orchestrator wired to paths.
func New(paths workspace.Paths, redactor *redact.Redactor) *Orchestrator {
	return &Orchestrator{
		Paths:     paths,
		Redactor:  redactor,
		Receipts:  receipt.New(paths.Receipts),
		Artifacts: artifact.New(paths.Artifacts),
	}
}

// RunPhase executes spec.md §4.8's 7-step flow for one phase.
func (o *Orchestrator) RunPhase(ctx context.Context, specID string, phaseID spec.PhaseID, problemStatement []byte, opt Options) (Outcome, error) {
	for _, dep := range phaseID.Deps() {
		ok, err := o.Artifacts.Exists(dep)
		if err != nil {
			return Outcome{}, err
		}
		if !ok && !opt.Force {
			return Outcome{}, newDependencyNotSatisfied(phaseID, dep)
		}
	}

	// Step 1: acquire lock (mutating operations only; RunPhase always mutates).
	guard, err := lock.Acquire(o.Paths.LockGuard, opt.LockTTL, opt.Force)
	if err != nil {
		return Outcome{}, err
	}
	defer func() {
		if r := recover(); r != nil {
			guard.Release()
			panic(r)
		}
	}()
	defer guard.Release()

	emittedAt := time.Now().UTC()
	runID := uuid.NewString()
	p := phase.ByID(phaseID)
	phCtx := phase.Context{
		SpecID:           specID,
		RepoRoot:         o.Paths.Source,
		ArtifactDir:      o.Paths.Artifacts,
		ProblemStatement: problemStatement,
		StrictValidation: opt.Strict,
		PacketBuilder:    packet.NewBuilder(o.Paths.Source, o.Paths.Artifacts, o.Redactor),
	}
	if opt.PacketBudget.LimitBytes > 0 && opt.PacketBudget.LimitLines > 0 {
		phCtx.PacketBuilder.Budget = opt.PacketBudget
	}

	// Step 2: build packet.
	pkt, err := p.MakePacket(phCtx)
	if err != nil {
		return Outcome{}, o.writeFailureReceipt(specID, phaseID, emittedAt, runID, opt, llm.Result{}, err)
	}

	// Step 3: optional debug packet preview, only after a successful build.
	if opt.DebugPacket {
		if err := packet.WriteDebugPacket(o.Paths.Context, phaseID, pkt.Content); err != nil {
			return Outcome{}, err
		}
	}

	// Step 4: invoke the configured LLM backend with the phase-specific
	// prompt and packet (spec.md §9: "one method invoke(inv) -> result;
	// backends are selected by configuration"). In dry-run mode the
	// backend is skipped and a deterministic placeholder flows through
	// the same postprocess/persist/receipt path, so a dry run still
	// yields artifacts and a success receipt.
	var res llm.Result
	var fallbackUsed *bool
	if opt.DryRun {
		res = llm.Result{Content: string(phase.PlaceholderResponse(phaseID, specID)), RunnerUsed: "dry-run"}
		t := true
		fallbackUsed = &t
	} else {
		backend := opt.Backend
		if backend == nil {
			backend = llm.NewSubprocessBackend(opt.RunnerInv)
		}
		// Messages feeds the HTTP backends; RawStdin is the equivalent
		// flattened payload the subprocess backend pipes to the CLI.
		prompt := p.Prompt(phCtx)
		llmInv := llm.Invocation{
			SpecID:  specID,
			PhaseID: phaseID.String(),
			Timeout: opt.RunnerInv.Timeout,
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: prompt},
				{Role: llm.RoleUser, Content: string(pkt.Content)},
			},
			RawStdin: append([]byte(prompt+"\n\n"), pkt.Content...),
		}
		var runErr error
		res, runErr = backend.Invoke(ctx, llmInv)
		if runErr != nil {
			// Step 5: persist partial artifacts even on failure so resume has material.
			o.writePartial(phaseID, []byte(res.Content))
			return Outcome{}, o.writeFailureReceipt(specID, phaseID, emittedAt, runID, opt, res, runErr)
		}
	}
	rawOutput := []byte(res.Content)

	// Step 6: postprocess, persist artifacts atomically, write receipt.
	result, err := p.Postprocess(rawOutput, phCtx)
	if err != nil {
		o.writePartial(phaseID, rawOutput)
		return Outcome{}, o.writeFailureReceipt(specID, phaseID, emittedAt, runID, opt, res, err)
	}

	written := make([]spec.Artifact, 0, len(result.Artifacts))
	outputs := make([]spec.OutputEvidence, 0, len(result.Artifacts))
	for _, a := range result.Artifacts {
		wa, err := o.Artifacts.Write(a, phaseID.String())
		if err != nil {
			return Outcome{}, err
		}
		written = append(written, wa)
		outputs = append(outputs, spec.OutputEvidence{Path: wa.Filename(), BLAKE3Hash: wa.BLAKE3Hash})
	}

	r := spec.Receipt{
		SchemaVersion:           spec.SchemaVersionV1,
		EmittedAt:               emittedAt,
		SpecID:                  specID,
		Phase:                   phaseID.String(),
		ModelFullName:           opt.Model.FullName,
		ModelAlias:              opt.Model.Alias,
		ClaudeCLIVersion:        opt.Model.CLIVersion,
		Runner:                  res.RunnerUsed,
		RunnerDistro:            res.RunnerDistro,
		CanonicalizationVersion: spec.CanonicalizationVersion,
		CanonicalizationBackend: spec.CanonicalizationBackend,
		Packet:                  spec.PacketEvidenceJSON{Files: pkt.Evidence.Files, MaxBytes: pkt.Evidence.MaxBytes, MaxLines: pkt.Evidence.MaxLines},
		Outputs:                 outputs,
		ExitCode:                0,
		Warnings:                result.Warnings,
		FallbackUsed:            fallbackUsed,
		LLM:                     llmEvidence(res),
		Pipeline:                runID,
	}
	if _, err := o.Receipts.Write(r); err != nil {
		return Outcome{}, err
	}

	return Outcome{Receipt: r, Artifacts: written}, nil
}

// writePartial persists raw backend output under <name>.partial.md so a
// subsequent resume has material to inspect (spec.md §4.8 step 5).
func (o *Orchestrator) writePartial(phaseID spec.PhaseID, raw []byte) {
	if len(raw) == 0 {
		return
	}
	path := filepath.Join(o.Paths.Artifacts, phaseID.String()+".partial.md")
	_ = os.WriteFile(path, raw, 0o644)
}

// writeFailureReceipt records a failed invocation and returns the
// original error unchanged so the CLI can still classify its exit code.
func (o *Orchestrator) writeFailureReceipt(specID string, phaseID spec.PhaseID, emittedAt time.Time, runID string, opt Options, res llm.Result, cause error) error {
	kind := specerr.KindGeneric
	reason := cause.Error()
	if se, ok := cause.(*specerr.Error); ok {
		kind = se.Kind
		reason = se.UserMessage
	}

	// stderr is redacted before it reaches the receipt; the 2048-byte
	// bound was already applied by the backend.
	stderrTail := res.StderrTail
	if stderrTail != "" && o.Redactor != nil {
		stderrTail = o.Redactor.RedactString(stderrTail)
	}

	r := spec.Receipt{
		SchemaVersion:           spec.SchemaVersionV1,
		EmittedAt:               emittedAt,
		SpecID:                  specID,
		Phase:                   phaseID.String(),
		ModelFullName:           opt.Model.FullName,
		ModelAlias:              opt.Model.Alias,
		ClaudeCLIVersion:        opt.Model.CLIVersion,
		Runner:                  res.RunnerUsed,
		RunnerDistro:            res.RunnerDistro,
		CanonicalizationVersion: spec.CanonicalizationVersion,
		CanonicalizationBackend: spec.CanonicalizationBackend,
		ExitCode:                specerr.ExitCode(kind),
		ErrorKind:               kind.String(),
		ErrorReason:             reason,
		StderrTail:              stderrTail,
		Pipeline:                runID,
	}
	if _, werr := o.Receipts.Write(r); werr != nil {
		return werr
	}
	return cause
}

// llmEvidence projects a backend Result onto the receipt's optional llm
// evidence block (spec.md §3 Receipt.llm), nil when the backend reported
// nothing worth recording (the subprocess backend leaves Provider empty).
func llmEvidence(res llm.Result) *spec.LLMEvidence {
	if res.Provider == "" && res.TokensInput == nil && res.TokensOutput == nil {
		return nil
	}
	return &spec.LLMEvidence{
		Provider:     res.Provider,
		ModelUsed:    res.ModelUsed,
		TokensInput:  res.TokensInput,
		TokensOutput: res.TokensOutput,
		TimedOut:     res.TimedOut,
	}
}

func newDependencyNotSatisfied(phaseID, dependency spec.PhaseID) error {
	return specerr.New(specerr.KindDependencyNotSatisfied, "required upstream phase has not produced an artifact").
		WithContext("phase", phaseID.String()).
		WithContext("dependency", dependency.String()).
		WithSuggestion("run the dependency phase first, or pass --force to override")
}
