// Package roles keeps members' "Level N" roles in line with their ledger
// level. Reconciliation is best effort: platform failures are logged and
// repaired by the next ReconcileAll.
package roles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ellavondegurechaff/questbot/internal/domain/leveling"
	"github.com/ellavondegurechaff/questbot/internal/domain/platform"
	"github.com/ellavondegurechaff/questbot/internal/domain/xp"
	"github.com/ellavondegurechaff/questbot/internal/worker"
)

const reason = "Level role sync"

// LevelSource is the read side of the XP ledger.
type LevelSource interface {
	Get(ctx context.Context, memberID, guildID snowflake.ID) (xp.Record, error)
	All(ctx context.Context, guildID snowflake.ID) ([]xp.Record, error)
}

// Config sizes the worker pool. Zero values fall back to defaults.
type Config struct {
	Workers     int
	QueueSize   int
	CallTimeout time.Duration
	// Concurrency bounds parallel members in ReconcileAll.
	Concurrency int
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 10 * time.Second
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	return c
}

// Report summarizes a ReconcileAll run.
type Report struct {
	Members int
	Granted int
	Removed int
	Missing int
	Failed  int
	Created int
}

func (r Report) Changed() bool {
	return r.Granted+r.Removed+r.Created > 0
}

type Reconciler struct {
	platform platform.Platform
	levels   LevelSource
	cfg      Config
	queue    chan xp.LevelChanged

	guildLocks sync.Map

	mu      sync.Mutex
	workers *worker.Manager
}

func NewReconciler(p platform.Platform, levels LevelSource, cfg Config) *Reconciler {
	cfg = cfg.withDefaults()
	return &Reconciler{
		platform: p,
		levels:   levels,
		cfg:      cfg,
		queue:    make(chan xp.LevelChanged, cfg.QueueSize),
	}
}

// Start launches the worker pool. Calling Start on a running reconciler is a no-op.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.workers != nil {
		return
	}

	r.workers = worker.NewManager(ctx)
	for i := 0; i < r.cfg.Workers; i++ {
		r.workers.Go(fmt.Sprintf("reconciler-%d", i), r.Run)
	}
	slog.Info("Role reconciler started",
		slog.String("type", "worker"),
		slog.Int("workers", r.cfg.Workers),
		slog.Int("queue_size", r.cfg.QueueSize),
	)
}

// Stop cancels the workers and waits for in-flight reconciliations.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	workers := r.workers
	r.workers = nil
	r.mu.Unlock()

	if workers == nil {
		return
	}
	if err := workers.Shutdown(r.cfg.CallTimeout + time.Second); err != nil {
		slog.Warn("Role reconciler did not stop in time",
			slog.String("type", "worker"),
			slog.Any("error", err),
		)
	}
	slog.Info("Role reconciler stopped",
		slog.String("type", "worker"),
		slog.Int("dropped_pending", r.Pending()),
	)
}

// Run drains the queue until ctx is done.
func (r *Reconciler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-r.queue:
			r.Reconcile(ctx, event)
		}
	}
}

// Notify implements xp.Notifier.
func (r *Reconciler) Notify(event xp.LevelChanged) {
	r.Enqueue(event)
}

// Enqueue schedules a reconciliation without blocking. It reports false when
// the queue is full and the event was dropped.
func (r *Reconciler) Enqueue(event xp.LevelChanged) bool {
	select {
	case r.queue <- event:
		return true
	default:
		slog.Warn("Role reconcile queue full, dropping event",
			slog.String("type", "worker"),
			slog.String("guild_id", event.GuildID.String()),
			slog.String("member_id", event.MemberID.String()),
			slog.Int("new_level", event.NewLevel),
		)
		return false
	}
}

// Pending is the number of queued events.
func (r *Reconciler) Pending() int {
	return len(r.queue)
}

func (r *Reconciler) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.cfg.CallTimeout)
}

// Reconcile moves the member onto the tier role of their current ledger level.
// Failures are logged and never returned.
func (r *Reconciler) Reconcile(ctx context.Context, event xp.LevelChanged) {
	start := time.Now()
	log := slog.With(
		slog.String("type", "worker"),
		slog.String("guild_id", event.GuildID.String()),
		slog.String("member_id", event.MemberID.String()),
	)

	callCtx, cancel := r.callCtx(ctx)
	member, err := r.platform.Member(callCtx, event.GuildID, event.MemberID)
	cancel()
	if errors.Is(err, platform.ErrMemberNotFound) {
		log.Debug("Member left, skipping role sync")
		return
	}
	if err != nil {
		log.Warn("Failed to resolve member for role sync", slog.Any("error", err))
		return
	}

	target := event.NewLevel
	if record, err := r.levels.Get(ctx, event.MemberID, event.GuildID); err != nil {
		log.Warn("Failed to re-read level, using event level", slog.Any("error", err))
	} else {
		target = record.Level
	}
	target = leveling.Clamp(target)

	callCtx, cancel = r.callCtx(ctx)
	roles, err := r.platform.Roles(callCtx, event.GuildID)
	cancel()
	if err != nil {
		log.Warn("Failed to list guild roles", slog.Any("error", err))
		return
	}

	tiers := tierRolesOf(roles)
	if _, ok := tiers[target]; !ok {
		created, err := r.EnsureTierRoles(ctx, event.GuildID)
		if err != nil {
			log.Warn("Failed to create tier roles", slog.Any("error", err))
		}
		if created.Tiers != nil {
			tiers = created.Tiers
			roles = created.Roles
		}
	}

	granted, removed, failed := r.apply(ctx, member, roles, tiers, target)
	log.Info("Role sync finished",
		slog.Int("old_level", event.OldLevel),
		slog.Int("level", target),
		slog.Int("granted", granted),
		slog.Int("removed", removed),
		slog.Int("failed", failed),
		slog.Duration("took", time.Since(start)),
	)
}

// apply removes stray tier roles before granting the target. Each call is
// independent; one failing does not skip the others.
func (r *Reconciler) apply(ctx context.Context, member platform.Member, roles []platform.Role, tiers TierRoles, target int) (granted, removed, failed int) {
	p := planFor(member, roles, tiers, target)

	for _, role := range p.remove {
		callCtx, cancel := r.callCtx(ctx)
		err := r.platform.RemoveRole(callCtx, member.GuildID, member.ID, role.ID, reason)
		cancel()
		if err != nil {
			failed++
			slog.Warn("Failed to remove tier role",
				slog.String("type", "worker"),
				slog.String("member_id", member.ID.String()),
				slog.String("role", role.Name),
				slog.Any("error", err),
			)
			continue
		}
		removed++
	}

	if p.grant != nil {
		callCtx, cancel := r.callCtx(ctx)
		err := r.platform.AddRole(callCtx, member.GuildID, member.ID, p.grant.ID, reason)
		cancel()
		if err != nil {
			failed++
			slog.Warn("Failed to grant tier role",
				slog.String("type", "worker"),
				slog.String("member_id", member.ID.String()),
				slog.String("role", p.grant.Name),
				slog.Any("error", err),
			)
		} else {
			granted++
		}
	}

	if _, ok := tiers[target]; !ok {
		failed++
	}
	return granted, removed, failed
}

// Ensured is the guild's role listing after EnsureTierRoles.
type Ensured struct {
	Roles   []platform.Role
	Tiers   TierRoles
	Created []platform.Role
}

func (r *Reconciler) guildLock(guildID snowflake.ID) *sync.Mutex {
	v, _ := r.guildLocks.LoadOrStore(guildID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// EnsureTierRoles creates whichever of the ten tier roles the guild lacks.
// Existing roles are left alone. Creation stops at the first permission
// error; other failures skip that tier.
func (r *Reconciler) EnsureTierRoles(ctx context.Context, guildID snowflake.ID) (Ensured, error) {
	lock := r.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	callCtx, cancel := r.callCtx(ctx)
	roles, err := r.platform.Roles(callCtx, guildID)
	cancel()
	if err != nil {
		return Ensured{}, fmt.Errorf("list roles: %w", err)
	}

	out := Ensured{Roles: roles, Tiers: tierRolesOf(roles)}
	var errs []error
	for level := leveling.MinLevel; level <= leveling.MaxLevel; level++ {
		if _, ok := out.Tiers[level]; ok {
			continue
		}

		name := leveling.TierRoleName(level)
		callCtx, cancel := r.callCtx(ctx)
		role, err := r.platform.CreateRole(callCtx, guildID, name, leveling.TierRoleColor(level), reason)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("create %s: %w", name, err))
			if errors.Is(err, platform.ErrForbidden) {
				slog.Warn("Missing permission to create tier roles",
					slog.String("type", "worker"),
					slog.String("guild_id", guildID.String()),
				)
				break
			}
			continue
		}

		out.Roles = append(out.Roles, role)
		out.Tiers[level] = role
		out.Created = append(out.Created, role)
	}

	if len(out.Created) > 0 {
		slog.Info("Created tier roles",
			slog.String("type", "worker"),
			slog.String("guild_id", guildID.String()),
			slog.Int("created", len(out.Created)),
		)
	}
	return out, errors.Join(errs...)
}

// ReconcileAll re-applies the correct tier role for every ledger entry of the
// guild. Running it twice in a row changes nothing the second time.
func (r *Reconciler) ReconcileAll(ctx context.Context, guildID snowflake.ID) (Report, error) {
	start := time.Now()

	records, err := r.levels.All(ctx, guildID)
	if err != nil {
		return Report{}, err
	}

	ensured, err := r.EnsureTierRoles(ctx, guildID)
	if err != nil {
		if ensured.Tiers == nil {
			return Report{}, err
		}
		slog.Warn("Some tier roles could not be created",
			slog.String("type", "worker"),
			slog.String("guild_id", guildID.String()),
			slog.Any("error", err),
		)
	}

	var granted, removed, missing, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for _, record := range records {
		g.Go(func() error {
			callCtx, cancel := r.callCtx(gctx)
			member, err := r.platform.Member(callCtx, guildID, record.MemberID)
			cancel()
			if errors.Is(err, platform.ErrMemberNotFound) {
				missing.Add(1)
				return nil
			}
			if err != nil {
				failed.Add(1)
				return nil
			}

			gr, rm, f := r.apply(gctx, member, ensured.Roles, ensured.Tiers, leveling.Clamp(record.Level))
			granted.Add(int64(gr))
			removed.Add(int64(rm))
			failed.Add(int64(f))
			return nil
		})
	}
	_ = g.Wait()

	report := Report{
		Members: len(records),
		Granted: int(granted.Load()),
		Removed: int(removed.Load()),
		Missing: int(missing.Load()),
		Failed:  int(failed.Load()),
		Created: len(ensured.Created),
	}
	slog.Info("Reconciled guild tier roles",
		slog.String("type", "worker"),
		slog.String("guild_id", guildID.String()),
		slog.Int("members", report.Members),
		slog.Int("granted", report.Granted),
		slog.Int("removed", report.Removed),
		slog.Int("missing", report.Missing),
		slog.Int("failed", report.Failed),
		slog.Int("created", report.Created),
		slog.Duration("took", time.Since(start)),
	)
	return report, ctx.Err()
}
