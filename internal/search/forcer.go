package search

import (
	"context"
	"fmt"
	"hash"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vvka-141/flywaysum/internal/checksum"
	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// Config bounds a search. Zero values select defaults.
type Config struct {
	// Workers is the number of concurrent workers per length (default 16).
	Workers int
	// MaxLength is the longest comment body tried, 1..8 (default 8).
	MaxLength int
	// Alphabet defaults to DefaultAlphabet.
	Alphabet Alphabet
	// Verbose enables per-round diagnostics through the logger.
	Verbose bool
}

// withDefaults fills zero fields and validates the result.
func (c Config) withDefaults() (Config, error) {
	if c.Workers == 0 {
		c.Workers = flywaysum.DefaultWorkers
	}
	if c.MaxLength == 0 {
		c.MaxLength = flywaysum.DefaultMaxCommentLength
	}
	if c.Alphabet == "" {
		c.Alphabet = DefaultAlphabet
	}

	if c.Workers < 0 {
		return c, fmt.Errorf("%w: workers must be positive, got %d", flywaysum.ErrInvalidConfig, c.Workers)
	}
	if c.MaxLength < 0 || c.MaxLength > flywaysum.DefaultMaxCommentLength {
		return c, fmt.Errorf("%w: max length must be between 1 and %d, got %d",
			flywaysum.ErrInvalidConfig, flywaysum.DefaultMaxCommentLength, c.MaxLength)
	}
	if err := c.Alphabet.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// EventKind identifies a progress event.
type EventKind int

const (
	// EventLengthStarted is sent before the workers of a length start.
	EventLengthStarted EventKind = iota
	// EventLengthExhausted is sent when every candidate of a length failed.
	EventLengthExhausted
	// EventFound is sent once, with the winning comment.
	EventFound
)

// Event reports search progress. Elapsed and Candidates cover one length.
type Event struct {
	Kind       EventKind
	Length     int
	Elapsed    time.Duration
	Candidates int64
	Comment    string
}

// Forcer runs the parallel comment search.
// A Forcer is safe for concurrent use; each Search call owns its workers.
type Forcer struct {
	cfg        Config
	calculator checksum.Calculator
	logger     flywaysum.Logger
	onEvent    func(Event)
	// engine creates the private accumulator each worker restores the base
	// state into.
	engine func() hash.Hash32

	// visit, when set, is called by a worker before each candidate is evaluated.
	visit func(worker int, candidate []byte, round *roundState)
}

func newAccumulator() hash.Hash32 { return checksum.NewAccumulator() }

// NewForcer creates a Forcer. Invalid configuration is reported by Search.
func NewForcer(cfg Config, logger flywaysum.Logger) *Forcer {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Forcer{
		cfg:        cfg,
		calculator: checksum.New(),
		logger:     logger,
		engine:     newAccumulator,
	}
}

// WithEngine returns a copy of f whose workers restore the base state into
// accumulators created by newHash. Any CRC-32 (IEEE) hash that marshals its
// state in the hash/crc32 format works, crc32.NewIEEE included. Engines that
// cannot import or export their register abort Search with an error wrapping
// flywaysum.ErrEngineCapability.
func (f *Forcer) WithEngine(newHash func() hash.Hash32) *Forcer {
	clone := *f
	clone.engine = newHash
	return &clone
}

// WithProgress returns a copy of f that reports progress to fn.
// fn is called from the goroutine running Search, never from workers.
func (f *Forcer) WithProgress(fn func(Event)) *Forcer {
	clone := *f
	clone.onEvent = fn
	return &clone
}

func (f *Forcer) emit(e Event) {
	if f.onEvent != nil {
		f.onEvent(e)
	}
}

// FindMatchingComment returns the shortest comment that, appended as a new
// last line of content, gives content the target checksum.
// found is false when no comment within the configured bounds matches.
func (f *Forcer) FindMatchingComment(ctx context.Context, content []byte, target flywaysum.Checksum) (comment string, found bool, err error) {
	base, err := f.calculator.BaseState(content)
	if err != nil {
		return "", false, err
	}
	return f.Search(ctx, base, target)
}

// Search tries lengths 1..MaxLength in order. For each length it starts one
// worker per partition, waits for all of them, and returns as soon as a
// length produced a match. base is only read.
func (f *Forcer) Search(ctx context.Context, base checksum.State, target flywaysum.Checksum) (string, bool, error) {
	cfg, err := f.cfg.withDefaults()
	if err != nil {
		return "", false, err
	}

	session := uuid.New()
	parts := Partitions(cfg.Alphabet.Len(), cfg.Workers)
	if cfg.Verbose {
		f.logger.Verbose("search %s: base register 0x%08X, target %s", session, base.Register(), target)
		f.logger.Verbose("search %s: %d partitions over %d characters", session, len(parts), cfg.Alphabet.Len())
	}

	prefix := base.Update([]byte(flywaysum.CommentPrefix))

	for length := 1; length <= cfg.MaxLength; length++ {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}

		f.emit(Event{Kind: EventLengthStarted, Length: length})
		started := time.Now()

		comment, tried, err := f.round(ctx, cfg, parts, prefix, length, target)
		elapsed := time.Since(started)
		if err != nil {
			return "", false, err
		}

		if cfg.Verbose {
			f.logger.Verbose("search %s: length %d evaluated %d candidates in %s", session, length, tried, elapsed)
		}

		if comment != "" {
			f.emit(Event{Kind: EventFound, Length: length, Elapsed: elapsed, Candidates: tried, Comment: comment})
			return comment, true, nil
		}

		if err := ctx.Err(); err != nil {
			return "", false, err
		}
		f.emit(Event{Kind: EventLengthExhausted, Length: length, Elapsed: elapsed, Candidates: tried})
	}

	return "", false, nil
}

// roundState is shared by the workers of one length.
type roundState struct {
	stop   atomic.Bool
	winner atomic.Pointer[string]
}

// publish records comment unless another worker won first, then stops the round.
func (r *roundState) publish(comment string) bool {
	won := r.winner.CompareAndSwap(nil, &comment)
	r.stop.Store(true)
	return won
}

func (r *roundState) result() string {
	if w := r.winner.Load(); w != nil {
		return *w
	}
	return ""
}

func (f *Forcer) round(
	ctx context.Context,
	cfg Config,
	parts []Partition,
	prefix checksum.State,
	length int,
	target flywaysum.Checksum,
) (string, int64, error) {
	state := &roundState{}
	g, gctx := errgroup.WithContext(ctx)
	release := context.AfterFunc(gctx, func() { state.stop.Store(true) })
	defer release()

	var tried atomic.Int64
	for w, p := range parts {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("search worker %d panicked: %v", w, r)
				}
			}()
			n, err := f.work(state, w, p, cfg.Alphabet, length, prefix, target)
			tried.Add(n)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		if cfg.Verbose {
			f.logger.Verbose("search round for length %d failed: %v", length, err)
		}
		return "", tried.Load(), err
	}
	return state.result(), tried.Load(), nil
}

// work evaluates the candidates of one partition. The worker first restores
// prefix into its own engine accumulator and reads the register back. regs[i]
// is the register after "--" and the first i candidate characters, so only
// the positions that changed since the previous candidate are hashed.
func (f *Forcer) work(
	state *roundState,
	worker int,
	p Partition,
	alphabet Alphabet,
	length int,
	prefix checksum.State,
	target flywaysum.Checksum,
) (int64, error) {
	acc := f.engine()
	if err := checksum.RestoreInto(acc, prefix); err != nil {
		return 0, fmt.Errorf("search worker %d: %w", worker, err)
	}
	start, err := checksum.Snapshot(acc)
	if err != nil {
		return 0, fmt.Errorf("search worker %d: %w", worker, err)
	}

	regs := make([]checksum.State, length+1)
	regs[0] = start

	var tried int64
	for changed, candidate := range p.Candidates(alphabet, length) {
		if state.stop.Load() {
			break
		}
		if f.visit != nil {
			f.visit(worker, candidate, state)
		}

		for i := changed; i < length; i++ {
			regs[i+1] = regs[i].Update(candidate[i : i+1])
		}
		tried++

		if regs[length].Checksum() == target {
			state.publish(flywaysum.CommentPrefix + string(candidate))
			break
		}
	}
	return tried, nil
}
