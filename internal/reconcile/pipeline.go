package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"mandata/internal/domain"
	"mandata/internal/events"
	"mandata/internal/platform/metrics"
	"mandata/internal/source"
	"mandata/internal/store"
	id "mandata/pkg/domain"
	dErrors "mandata/pkg/domain-errors"
	"mandata/pkg/platform/slug"
)

// Options tune one run.
type Options struct {
	// DryRun performs phases 1-3 counting without any writes and skips
	// phase 4 entirely.
	DryRun bool
	// Force ignores the incremental cursor and revisits every item.
	Force bool
}

// Engine runs the batch upsert pipeline. Its own fields are read-only after
// construction; all mutable per-run state (the resolution index, touched
// sets) lives in the run started by each call, so one Engine may serve
// concurrent runs of different sources. Two concurrent runs of the SAME
// source would still race on stale detection, which is what the per-source
// run lock prevents.
type Engine struct {
	stores     store.Stores
	merger     *Merger
	publisher  events.Publisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	photoCheck func(ctx context.Context, url string) error
	now        func() time.Time
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

func WithPublisher(p events.Publisher) EngineOption {
	return func(e *Engine) { e.publisher = p }
}

func WithPriorities(p Priorities) EngineOption {
	return func(e *Engine) { e.merger = NewMerger(p) }
}

// WithPhotoValidator installs the HEAD check applied to photo URLs coming
// from low-trust sources.
func WithPhotoValidator(check func(ctx context.Context, url string) error) EngineOption {
	return func(e *Engine) { e.photoCheck = check }
}

// WithClock injects time for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds the pipeline engine.
func NewEngine(stores store.Stores, opts ...EngineOption) (*Engine, error) {
	if stores.Persons == nil || stores.Identifiers == nil || stores.Mandates == nil {
		return nil, fmt.Errorf("person, identifier and mandate stores are required")
	}
	e := &Engine{
		stores:    stores,
		merger:    NewMerger(DefaultPriorities()),
		publisher: events.Nop{},
		logger:    slog.Default(),
		tracer:    otel.Tracer("mandata/reconcile"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// RunSnapshot executes the four-phase pipeline for a full-feed source. It
// never panics past this frame and always returns a usable summary, partial
// or not.
func (e *Engine) RunSnapshot(ctx context.Context, adapter source.SnapshotAdapter, opts Options) (summary domain.Summary) {
	src := adapter.Source()
	started := e.now()
	summary = domain.Summary{Source: src, StartedAt: started, DryRun: opts.DryRun}

	ctx, span := e.tracer.Start(ctx, "sync.snapshot")
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			summary.AddError(fmt.Errorf("pipeline panic: %v", r))
		}
		summary.Finish(e.now())
		e.finishRun(ctx, &summary, opts)
	}()

	// Phase 1: snapshot the open records this feed is authoritative for,
	// before anything mutates.
	capability := adapter.Capability()
	var openMandates []domain.Mandate
	if capability.ClosesMandates != "" {
		var err error
		openMandates, err = e.stores.Mandates.OpenByKind(ctx, capability.ClosesMandates)
		if err != nil {
			summary.AddError(fmt.Errorf("snapshot open mandates: %w", err))
			return summary
		}
	}
	var openDeclarations []domain.Declaration
	if capability.ClosesDeclarations {
		var err error
		openDeclarations, err = e.stores.Declarations.OpenBySource(ctx, src)
		if err != nil {
			summary.AddError(fmt.Errorf("snapshot open declarations: %w", err))
			return summary
		}
	}

	// Phase 2: stage the entire feed, then build the resolution index once.
	records, err := adapter.Fetch(ctx)
	if err != nil {
		summary.AddError(fmt.Errorf("fetch feed: %w", err))
		return summary
	}
	summary.Total = len(records)

	idx, err := BuildIndex(ctx, e.stores, src)
	if err != nil {
		summary.AddError(fmt.Errorf("build index: %w", err))
		return summary
	}
	run := &snapshotRun{
		engine:       e,
		source:       src,
		opts:         opts,
		resolver:     NewResolver(idx),
		index:        idx,
		lifecycle:    NewLifecycle(e.stores, opts.DryRun),
		now:          started,
		touched:      make(map[string]bool),
		touchedDecls: make(map[string]bool),
	}
	if err := run.loadOrganizations(ctx); err != nil {
		summary.AddError(err)
		return summary
	}

	// Phase 3: reconcile record by record. One bad row never fails the run.
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			summary.AddError(fmt.Errorf("run cancelled after %d records: %w", i, err))
			return summary
		}
		if err := run.reconcile(ctx, rec, &summary); err != nil {
			summary.AddError(fmt.Errorf("record %d: %w", i, err))
			if e.metrics != nil {
				e.metrics.RowErrorsTotal.WithLabelValues(src.String()).Inc()
			}
		}
	}

	// Phase 4: close whatever was open but absent from this full snapshot.
	if !opts.DryRun {
		run.closeStale(ctx, openMandates, openDeclarations, &summary)
		e.writeSyncState(ctx, src, "", nil, len(records), &summary)
	}
	return summary
}

// snapshotRun carries the per-run state of one snapshot sync.
type snapshotRun struct {
	engine       *Engine
	source       id.Source
	opts         Options
	resolver     *Resolver
	index        *Index
	lifecycle    *Lifecycle
	now          time.Time
	orgsBySlug   map[string]*domain.Organization
	touched      map[string]bool
	touchedDecls map[string]bool
}

func (r *snapshotRun) loadOrganizations(ctx context.Context) error {
	orgs, err := r.engine.stores.Organizations.All(ctx)
	if err != nil {
		return fmt.Errorf("load organizations: %w", err)
	}
	r.orgsBySlug = make(map[string]*domain.Organization, len(orgs))
	for i := range orgs {
		r.orgsBySlug[orgs[i].Slug] = &orgs[i]
	}
	return nil
}

func (r *snapshotRun) reconcile(ctx context.Context, rec source.Record, summary *domain.Summary) error {
	switch rec.Kind {
	case source.KindOfficial:
		return r.reconcileOfficial(ctx, rec.Official, summary)
	case source.KindOrganization:
		return r.reconcileOrganization(ctx, rec.Organization, summary)
	case source.KindDecision:
		return r.reconcileDecision(ctx, rec.Decision, summary)
	default:
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown record kind %q", rec.Kind)
	}
}

func (r *snapshotRun) reconcileOfficial(ctx context.Context, rec *source.Official, summary *domain.Summary) error {
	if rec.LastName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "official without last name")
	}

	e := r.engine
	match := r.resolver.Resolve(rec)

	// Low-trust photos get a reachability check before they can merge.
	if rec.PhotoURL != "" && e.photoCheck != nil && e.merger.priorities.Rank(domain.FieldPhotoURL, rec.Source) < 5 {
		if err := e.photoCheck(ctx, rec.PhotoURL); err != nil {
			e.logger.Warn("dropping unreachable photo", "source", rec.Source, "url", rec.PhotoURL)
			rec.PhotoURL = ""
		}
	}

	created := false
	var p *domain.Person
	if match.Person == nil {
		p = domain.NewPerson(rec.FirstName, rec.LastName, r.now)
		e.merger.MergeOfficial(p, rec)
		if !r.opts.DryRun {
			if err := e.stores.Persons.Create(ctx, p); err != nil {
				return fmt.Errorf("create person: %w", err)
			}
		}
		r.index.Add(p)
		created = true
		summary.Created++
		r.emit(ctx, events.KindPersonCreated, p.ID.String())
	} else {
		p = match.Person
		summary.Matched++
		if match.LowConfidence {
			summary.LowConfidence++
			e.logger.Warn("ambiguous name match resolved deterministically",
				"source", rec.Source, "name", p.FullName(), "person", p.ID)
		}
	}

	// Anchor the external identifier to whoever we settled on. A conflict
	// here means the id already belongs to someone else; that is a skipped
	// duplicate, never a silent reassignment.
	if rec.ExternalID != "" && (created || match.Via != ViaExternalID) {
		ident := domain.PersonIdentifier(rec.Source, rec.ExternalID, p.ID, r.now)
		if !r.opts.DryRun {
			if err := e.stores.Identifiers.Attach(ctx, ident); err != nil {
				if dErrors.HasCode(err, dErrors.CodeConflict) {
					return fmt.Errorf("identifier %s/%s: %w", rec.Source, rec.ExternalID, err)
				}
				return fmt.Errorf("attach identifier: %w", err)
			}
		}
		r.index.Anchor(rec.ExternalID, p.ID)
	}

	personDirty := false
	if !created {
		personDirty = e.merger.MergeOfficial(p, rec)
	}
	rowChanged := false

	if rec.Mandate != nil {
		m, change, err := r.lifecycle.OpenOrRefreshMandate(ctx, p, rec, r.now)
		if err != nil {
			return err
		}
		r.markTouched(m, p)
		if change.Created {
			r.index.OpenMandate(*m)
			r.emit(ctx, events.KindMandateOpened, m.ID.String())
		}
		rowChanged = rowChanged || change.Created || change.Updated
	}

	if rec.Party != nil {
		org, err := r.ensureOrganization(ctx, &source.Organization{
			Source:  rec.Source,
			Name:    rec.Party.Name,
			Acronym: rec.Party.Acronym,
		}, summary)
		if err != nil {
			return err
		}
		change, pointerChanged, err := r.lifecycle.SetAffiliation(ctx, p, org, rec.Party.StartDate, rec.Source, r.now)
		if err != nil {
			return err
		}
		personDirty = personDirty || pointerChanged
		rowChanged = rowChanged || change.Created || change.Updated
	}

	if rec.Declaration != nil {
		change, err := r.lifecycle.OpenOrRefreshDeclaration(ctx, p.ID, rec.Declaration, rec.Source, r.now)
		if err != nil {
			return err
		}
		r.touchedDecls[rec.Declaration.ExternalID] = true
		rowChanged = rowChanged || change.Created || change.Updated
	}

	if personDirty {
		p.UpdatedAt = r.now
		if !r.opts.DryRun {
			if err := e.stores.Persons.Update(ctx, p); err != nil {
				return fmt.Errorf("update person: %w", err)
			}
		}
	}
	if !created && (personDirty || rowChanged) {
		summary.Updated++
		r.emit(ctx, events.KindPersonUpdated, p.ID.String())
	}
	return nil
}

func (r *snapshotRun) reconcileOrganization(ctx context.Context, rec *source.Organization, summary *domain.Summary) error {
	if rec.Name == "" && rec.Acronym == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "organization without name")
	}
	org, err := r.ensureOrganization(ctx, rec, summary)
	if err != nil {
		return err
	}
	if r.engine.merger.MergeOrganization(org, rec) {
		org.UpdatedAt = r.now
		if !r.opts.DryRun {
			if err := r.engine.stores.Organizations.Update(ctx, org); err != nil {
				return fmt.Errorf("update organization: %w", err)
			}
		}
		summary.Updated++
		r.emit(ctx, events.KindOrganizationChange, org.ID.String())
		return nil
	}
	summary.Matched++
	return nil
}

func (r *snapshotRun) reconcileDecision(ctx context.Context, rec *source.Decision, summary *domain.Summary) error {
	// Case-law hits resolve against existing persons only: a surname in a
	// court record is too weak a signal to mint a new official.
	match := r.resolver.Resolve(&source.Official{
		Source:    rec.Source,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
	})
	if match.Person == nil {
		summary.NotFound++
		return nil
	}
	summary.Matched++
	if match.LowConfidence {
		summary.LowConfidence++
	}

	e := r.engine
	existing, err := e.stores.Decisions.ByExternalID(ctx, rec.Source, rec.ExternalID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load decision: %w", err)
	}
	if existing == nil {
		d := domain.NewJudicialDecision(match.Person.ID, rec.Source, rec.ExternalID, r.now)
		d.Jurisdiction = rec.Jurisdiction
		d.DecidedAt = rec.DecidedAt
		d.Summary = rec.Summary
		d.RawStatus = rec.RawStatus
		if !r.opts.DryRun {
			if err := e.stores.Decisions.Create(ctx, d); err != nil {
				return fmt.Errorf("create decision: %w", err)
			}
		}
		summary.Created++
		return nil
	}

	dirty := false
	if existing.Jurisdiction != rec.Jurisdiction && rec.Jurisdiction != "" {
		existing.Jurisdiction = rec.Jurisdiction
		dirty = true
	}
	if existing.Summary != rec.Summary && rec.Summary != "" {
		existing.Summary = rec.Summary
		dirty = true
	}
	if existing.RawStatus != rec.RawStatus && rec.RawStatus != "" {
		existing.RawStatus = rec.RawStatus
		dirty = true
	}
	if dirty {
		existing.UpdatedAt = r.now
		if !r.opts.DryRun {
			if err := e.stores.Decisions.Update(ctx, existing); err != nil {
				return fmt.Errorf("update decision: %w", err)
			}
		}
		summary.Updated++
	}
	return nil
}

func (r *snapshotRun) ensureOrganization(ctx context.Context, rec *source.Organization, summary *domain.Summary) (*domain.Organization, error) {
	name := rec.Name
	if name == "" {
		name = rec.Acronym
	}
	key := slug.Name(name)
	if org, ok := r.orgsBySlug[key]; ok {
		return org, nil
	}
	org := domain.NewOrganization(name, r.now)
	org.Acronym = rec.Acronym
	if !r.opts.DryRun {
		if err := r.engine.stores.Organizations.Create(ctx, org); err != nil {
			return nil, fmt.Errorf("create organization: %w", err)
		}
	}
	r.orgsBySlug[key] = org
	summary.Created++
	r.emit(ctx, events.KindOrganizationChange, org.ID.String())
	return org, nil
}

// markTouched records both stale-detection keys for a reconciled mandate:
// the external identifier when the feed provides one (preferred, it survives
// missing reference data), and the natural key as fallback.
func (r *snapshotRun) markTouched(m *domain.Mandate, p *domain.Person) {
	if m.ExternalID != "" {
		r.touched["ext|"+m.ExternalID] = true
	}
	r.touched["nat|"+p.ID.String()+"|"+m.NaturalKey()] = true
}

// closeStale is phase 4: anything open in the phase-1 snapshot that phase 3
// never touched gets closed at run time, one transaction per record.
func (r *snapshotRun) closeStale(ctx context.Context, openMandates []domain.Mandate, openDeclarations []domain.Declaration, summary *domain.Summary) {
	for i := range openMandates {
		m := &openMandates[i]
		if r.isTouched(m) {
			continue
		}
		if err := r.lifecycle.CloseMandate(ctx, m, r.now); err != nil {
			summary.AddError(fmt.Errorf("close mandate %s: %w", m.ID, err))
			continue
		}
		// The chamber's group membership ends with the seat.
		if _, err := r.lifecycle.CloseAffiliations(ctx, m.PersonID, r.source, r.now); err != nil {
			summary.AddError(fmt.Errorf("close affiliations for %s: %w", m.PersonID, err))
		}
		summary.Closed++
		r.emit(ctx, events.KindMandateClosed, m.ID.String())
	}

	for i := range openDeclarations {
		d := &openDeclarations[i]
		if r.touchedDecls[d.ExternalID] {
			continue
		}
		if err := r.lifecycle.CloseDeclaration(ctx, d, r.now); err != nil {
			summary.AddError(fmt.Errorf("close declaration %s: %w", d.ExternalID, err))
			continue
		}
		summary.Closed++
	}
}

func (r *snapshotRun) isTouched(m *domain.Mandate) bool {
	if m.ExternalID != "" {
		return r.touched["ext|"+m.ExternalID]
	}
	return r.touched["nat|"+m.PersonID.String()+"|"+m.NaturalKey()]
}

func (r *snapshotRun) emit(ctx context.Context, kind events.Kind, entityID string) {
	if r.opts.DryRun {
		return
	}
	if err := r.engine.publisher.Emit(ctx, events.Event{
		Kind:     kind,
		EntityID: entityID,
		Source:   r.source,
		At:       r.now,
	}); err != nil {
		r.engine.logger.Error("event emit failed", "kind", kind, "err", err)
	}
}

// RunRollCalls executes the incremental pipeline for an ordered roll-call
// feed: items at or below the cursor are skipped unless forced, and detail
// rewrites are skipped when the ballot content hash is unchanged.
func (e *Engine) RunRollCalls(ctx context.Context, adapter source.RollCallAdapter, opts Options) (summary domain.Summary) {
	src := adapter.Source()
	started := e.now()
	summary = domain.Summary{Source: src, StartedAt: started, DryRun: opts.DryRun}

	ctx, span := e.tracer.Start(ctx, "sync.rollcalls")
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			summary.AddError(fmt.Errorf("pipeline panic: %v", r))
		}
		summary.Finish(e.now())
		e.finishRun(ctx, &summary, opts)
	}()

	cursor := 0
	state, err := e.stores.SyncState.Get(ctx, src, "scrutins")
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		summary.AddError(fmt.Errorf("load sync state: %w", err))
		return summary
	}
	if state != nil && state.Cursor != nil {
		if cursor, err = strconv.Atoi(*state.Cursor); err != nil {
			summary.AddError(fmt.Errorf("corrupt cursor %q: %w", *state.Cursor, err))
			return summary
		}
	}

	metas, err := adapter.List(ctx)
	if err != nil {
		summary.AddError(fmt.Errorf("list roll calls: %w", err))
		return summary
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Number < metas[j].Number })
	summary.Total = len(metas)

	anchors, err := e.stores.Identifiers.BySource(ctx, src)
	if err != nil {
		summary.AddError(fmt.Errorf("load identifiers: %w", err))
		return summary
	}

	newCursor := cursor
	advance := true
	for _, meta := range metas {
		if err := ctx.Err(); err != nil {
			summary.AddError(fmt.Errorf("run cancelled at item %d: %w", meta.Number, err))
			break
		}
		if meta.Number <= cursor && !opts.Force {
			summary.CursorSkipped++
			continue
		}
		if err := e.syncRollCall(ctx, adapter, src, meta, anchors, opts, &summary); err != nil {
			summary.AddError(fmt.Errorf("roll call %d: %w", meta.Number, err))
			// Never advance the cursor past a failed item; it must be
			// retried on the next run.
			advance = false
			continue
		}
		if advance && meta.Number > newCursor {
			newCursor = meta.Number
		}
	}

	if !opts.DryRun {
		cursorStr := strconv.Itoa(newCursor)
		e.writeSyncState(ctx, src, "scrutins", &cursorStr, len(metas), &summary)
	}
	return summary
}

func (e *Engine) syncRollCall(ctx context.Context, adapter source.RollCallAdapter, src id.Source, meta source.RollCallMeta, anchors map[string]domain.ExternalIdentifier, opts Options, summary *domain.Summary) error {
	existing, err := e.stores.RollCalls.Get(ctx, src, meta.Number)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("load roll call: %w", err)
	}

	ballots, err := adapter.Ballots(ctx, meta.Number)
	if err != nil {
		return fmt.Errorf("fetch ballots: %w", err)
	}
	hash := BallotHash(ballots)

	rc := &domain.RollCall{
		Source:       src,
		Number:       meta.Number,
		Date:         meta.Date,
		Title:        meta.Title,
		CountFor:     meta.CountFor,
		CountAgainst: meta.CountAgainst,
		CountAbstain: meta.CountAbstain,
		BallotHash:   hash,
		UpdatedAt:    e.now(),
	}

	sameDetail := existing != nil && existing.BallotHash == hash
	sameMeta := existing != nil &&
		existing.Title == meta.Title &&
		existing.Date.Equal(meta.Date) &&
		existing.CountFor == meta.CountFor &&
		existing.CountAgainst == meta.CountAgainst &&
		existing.CountAbstain == meta.CountAbstain

	switch {
	case existing == nil:
		summary.Created++
	case sameDetail && sameMeta:
		summary.Matched++
	default:
		summary.Updated++
	}

	if opts.DryRun {
		return nil
	}
	if existing == nil || !sameMeta || !sameDetail {
		if err := e.stores.RollCalls.Upsert(ctx, rc); err != nil {
			return fmt.Errorf("upsert roll call: %w", err)
		}
	}
	if sameDetail {
		// Unchanged content hash: skip the delete+reinsert entirely.
		return nil
	}

	rows := make([]domain.Ballot, 0, len(ballots))
	for _, b := range ballots {
		row := domain.Ballot{
			Source:     src,
			Number:     meta.Number,
			ExternalID: b.VoterExternalID,
			Position:   b.Position,
		}
		if ident, ok := anchors[b.VoterExternalID]; ok && ident.OwnerKind == domain.OwnerPerson {
			row.PersonID = id.PersonID(ident.OwnerID)
		} else {
			summary.NotFound++
		}
		rows = append(rows, row)
	}
	if err := e.stores.RollCalls.ReplaceBallots(ctx, src, meta.Number, rows); err != nil {
		return fmt.Errorf("replace ballots: %w", err)
	}
	return nil
}

// writeSyncState persists the high-water mark at the end of the run.
func (e *Engine) writeSyncState(ctx context.Context, src id.Source, partition string, cursor *string, itemCount int, summary *domain.Summary) {
	state := domain.SyncState{
		Source:     src,
		Partition:  partition,
		LastSyncAt: e.now(),
		Cursor:     cursor,
		ItemCount:  itemCount,
	}
	if err := e.stores.SyncState.Put(ctx, state); err != nil {
		summary.AddError(fmt.Errorf("persist sync state: %w", err))
	}
}

// finishRun records metrics, persists the summary, and emits the run event.
func (e *Engine) finishRun(ctx context.Context, summary *domain.Summary, opts Options) {
	src := summary.Source.String()
	if e.metrics != nil {
		e.metrics.ObserveRun(src, summary.Success, summary.FinishedAt.Sub(summary.StartedAt))
		e.metrics.AddRecords(src, "created", summary.Created)
		e.metrics.AddRecords(src, "updated", summary.Updated)
		e.metrics.AddRecords(src, "closed", summary.Closed)
		e.metrics.AddRecords(src, "matched", summary.Matched)
	}
	e.logger.Info("sync run finished",
		"source", src,
		"success", summary.Success,
		"created", summary.Created,
		"updated", summary.Updated,
		"closed", summary.Closed,
		"matched", summary.Matched,
		"notFound", summary.NotFound,
		"cursorSkipped", summary.CursorSkipped,
		"errors", len(summary.Errors),
		"dryRun", summary.DryRun,
	)
	if opts.DryRun {
		return
	}
	if e.stores.Runs != nil {
		if err := e.stores.Runs.Append(ctx, *summary); err != nil {
			e.logger.Error("persist run summary failed", "err", err)
		}
	}
	if err := e.publisher.Emit(ctx, events.Event{
		Kind:   events.KindRunFinished,
		Source: summary.Source,
		At:     summary.FinishedAt,
	}); err != nil {
		e.logger.Error("event emit failed", "kind", events.KindRunFinished, "err", err)
	}
}
