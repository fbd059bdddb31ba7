// Package backtest implements the weekly swing-trading simulation engine.
package backtest

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	apperrors "weekly-backtester/internal/errors"
	"weekly-backtester/internal/indicators"
	"weekly-backtester/internal/logging"
	"weekly-backtester/internal/models"
	"weekly-backtester/internal/schedule"
	"weekly-backtester/internal/store"
)

// RunConfig identifies the instruments, horizon and capital for one run.
type RunConfig struct {
	TradedSymbol   string
	TreasurySymbol string
	Start          time.Time
	End            time.Time
	InitialCapital float64
}

func (c RunConfig) validate() error {
	if c.TradedSymbol == "" {
		return apperrors.NewConfigurationError("traded_symbol", c.TradedSymbol, "traded symbol is required")
	}
	if c.InitialCapital <= 0 {
		return apperrors.NewConfigurationError("initial_capital", c.InitialCapital, "initial capital must be positive")
	}
	if !c.End.After(c.Start) {
		return apperrors.NewConfigurationError("end", c.End.Format("2006-01-02"), "end must be after start")
	}
	return nil
}

// Engine runs deterministic weekly-cycle backtests. A single engine is safe
// for concurrent Run calls: each run reads the shared bar source and writes
// only its own RunResult.
type Engine struct {
	source   store.BarSource
	intraday store.IntradaySource
	weakness WeaknessPredicate
	logger   zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithIntraday attaches an intraday price source for fixed-clock entry and
// exit times.
func WithIntraday(src store.IntradaySource) Option {
	return func(e *Engine) { e.intraday = src }
}

// WithWeakness replaces the default weakness predicate.
func WithWeakness(pred WeaknessPredicate) Option {
	return func(e *Engine) { e.weakness = pred }
}

// WithLogger attaches a logger to the engine.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates a backtest engine over the given bar source.
func New(source store.BarSource, opts ...Option) *Engine {
	e := &Engine{
		source:   source,
		weakness: DefaultWeakness,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes one backtest and returns its immutable RunResult. The run is
// strictly sequential and deterministic: identical inputs produce identical
// results.
func (e *Engine) Run(ctx context.Context, params models.ParameterSet, cfg RunConfig) (*models.RunResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	bars, err := e.source.GetBars(ctx, cfg.TradedSymbol, cfg.Start, cfg.End)
	if err != nil {
		return nil, apperrors.Wrapf(err, "loading %s bars", cfg.TradedSymbol)
	}
	if len(bars) == 0 {
		return nil, apperrors.NewDataGapError(cfg.TradedSymbol, cfg.Start, cfg.End, apperrors.ErrNoBars)
	}
	if err := checkOrdered(cfg.TradedSymbol, bars); err != nil {
		return nil, err
	}

	treasury := map[string]models.PriceBar{}
	if cfg.TreasurySymbol != "" {
		tbars, err := e.source.GetBars(ctx, cfg.TreasurySymbol, cfg.Start, cfg.End)
		if err != nil {
			return nil, apperrors.Wrapf(err, "loading %s bars", cfg.TreasurySymbol)
		}
		for _, b := range tbars {
			treasury[dateKey(b.Date)] = b
		}
	}

	r := &run{
		engine:   e,
		params:   params,
		cfg:      cfg,
		bars:     bars,
		treasury: treasury,
		windows:  schedule.Weeks(bars, params.EntryDay, params.ExitDay),
		ledger:   NewLedger(cfg.InitialCapital),
		st:       strategyState{state: stateFlat, entryIdx: -1},
	}
	return r.execute(ctx), nil
}

// run holds the state of one backtest execution.
type run struct {
	engine   *Engine
	params   models.ParameterSet
	cfg      RunConfig
	bars     []models.PriceBar
	treasury map[string]models.PriceBar
	windows  []schedule.Window
	ledger   *Ledger
	st       strategyState
	trades   []models.Trade
}

func (r *run) execute(ctx context.Context) *models.RunResult {
	skipped := schedule.MissingWeeks(r.bars)
	for _, w := range skipped {
		logging.LogSkippedWeek(r.engine.logger, w.Year, w.Week)
	}

	winIdx := 0
	for i, bar := range r.bars {
		for winIdx < len(r.windows)-1 && i > r.windows[winIdx].LastIdx {
			winIdx++
		}
		win := r.windows[winIdx]

		if i == win.FirstIdx {
			r.st.beginWeek()
		}

		tbar, hasTreasury := r.treasury[dateKey(bar.Date)]

		switch r.st.state {
		case stateCooldown:
			r.st.tickCooldown()
		case stateFlat:
			isEntry := i == win.EntryIdx
			isReentry := r.st.reentryOK && i > win.EntryIdx && i < win.ExitIdx
			if isEntry || isReentry {
				// Re-entries always fill at the day's open; the configured
				// entry time applies to the week's scheduled entry only.
				fill := bar.Open
				if isEntry {
					fill = r.entryFill(ctx, bar)
				}
				r.open(i, bar, fill, tbar, hasTreasury)
			}
		}

		if r.st.state == stateHolding {
			if reason, fired := r.evaluateExit(i, i == win.ExitIdx); fired {
				price := bar.Close
				if reason == models.ExitEOW {
					price = r.exitFill(ctx, bar)
				}
				r.close(i, bar, price, reason)
			}
		}

		// Idle cash sweeps into the treasury instrument at its close.
		if !r.ledger.Holding() && hasTreasury {
			r.ledger.SweepIn(tbar.Close)
		}

		tClose := 0.0
		if hasTreasury {
			tClose = tbar.Close
		}
		r.ledger.Mark(bar.Date, bar.Close, tClose)
	}

	return &models.RunResult{
		Params:         r.params,
		Trades:         r.trades,
		Curve:          r.ledger.Curve(),
		SkippedWeeks:   skipped,
		InitialCapital: r.cfg.InitialCapital,
		FinalEquity:    r.ledger.Equity(),
	}
}

// open moves the whole equity into the traded instrument at fill.
func (r *run) open(i int, bar models.PriceBar, fill float64, tbar models.PriceBar, hasTreasury bool) {
	treasuryOpen := 0.0
	if hasTreasury {
		treasuryOpen = tbar.Open
	}
	r.ledger.SweepOut(treasuryOpen)

	notional := r.ledger.Open(fill)
	r.st.pos = models.Position{EntryDate: bar.Date, EntryPrice: fill, Notional: notional}
	r.st.entryIdx = i
	r.st.state = stateHolding
	r.st.reentryOK = false

	r.engine.logger.Debug().
		Str("event", "entry").
		Str("date", bar.Date.Format("2006-01-02")).
		Float64("fill", fill).
		Float64("notional", notional).
		Msg("Position opened")
}

// close liquidates the position at price and records the trade.
func (r *run) close(i int, bar models.PriceBar, price float64, reason models.ExitReason) {
	r.ledger.Close(price)

	trade := models.Trade{
		EntryDate:   r.st.pos.EntryDate,
		EntryPrice:  r.st.pos.EntryPrice,
		ExitDate:    bar.Date,
		ExitPrice:   price,
		ExitReason:  reason,
		ReturnPct:   price/r.st.pos.EntryPrice - 1,
		HoldingDays: i - r.st.entryIdx + 1,
	}
	r.trades = append(r.trades, trade)
	logging.LogTrade(r.engine.logger, string(reason), trade.EntryDate, trade.ExitDate, trade.ReturnPct)

	r.st.exited(reason, r.params)
}

// evaluateExit applies the closed exit-rule set in fixed precedence order:
// TP_A, TP_C, STOP, WEAKNESS, then the end-of-week rule on the exit day.
// Overlapping threshold crossings on one bar resolve to the first rule.
func (r *run) evaluateExit(i int, isExitDay bool) (models.ExitReason, bool) {
	unrealized := r.bars[i].Close/r.st.pos.EntryPrice - 1

	switch {
	case unrealized >= r.params.TargetA:
		return models.ExitTPA, true
	case unrealized >= r.params.TargetC:
		return models.ExitTPC, true
	case unrealized <= r.params.Stop:
		return models.ExitStop, true
	}
	if r.params.WeaknessEnabled && r.engine.weakness(r.st.pos, r.bars[r.st.entryIdx:i+1]) {
		return models.ExitWeakness, true
	}
	if isExitDay && !r.carryOver(i, unrealized) {
		return models.ExitEOW, true
	}
	return "", false
}

// carryOver decides on the exit day whether the position rides into next
// week. A failed gate means the end-of-week exit still applies.
func (r *run) carryOver(i int, unrealized float64) bool {
	switch r.params.WeekendHold {
	case models.HoldAlways:
		return true
	case models.HoldProfitable:
		return unrealized >= 0
	case models.HoldSMA20:
		return aboveSMA(r.bars, i, 20)
	case models.HoldSMA50:
		return aboveSMA(r.bars, i, 50)
	}
	return false // HoldNever
}

// aboveSMA gates on the close being above its moving average. An incomputable
// average (not enough history) fails the gate.
func aboveSMA(bars []models.PriceBar, i, period int) bool {
	sma := indicators.SMA(bars, i, period)
	return sma > 0 && bars[i].Close > sma
}

// entryFill resolves the entry price reference: the open, or an intraday
// sample at the configured clock time, falling back to the open when no
// sample exists.
func (r *run) entryFill(ctx context.Context, bar models.PriceBar) float64 {
	if r.params.EntryTime == models.TimeOpen || r.engine.intraday == nil {
		return bar.Open
	}
	return r.intradayOr(ctx, bar, r.params.EntryTime, bar.Open)
}

// exitFill resolves the forced end-of-week exit price reference.
func (r *run) exitFill(ctx context.Context, bar models.PriceBar) float64 {
	if r.params.ExitTime == models.TimeClose || r.engine.intraday == nil {
		return bar.Close
	}
	return r.intradayOr(ctx, bar, r.params.ExitTime, bar.Close)
}

func (r *run) intradayOr(ctx context.Context, bar models.PriceBar, clock string, fallback float64) float64 {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return fallback
	}
	ts := time.Date(bar.Date.Year(), bar.Date.Month(), bar.Date.Day(),
		t.Hour(), t.Minute(), 0, 0, bar.Date.Location())

	price, ok, err := r.engine.intraday.GetIntradayPrice(ctx, r.cfg.TradedSymbol, ts)
	if err != nil || !ok {
		r.engine.logger.Debug().
			Str("date", bar.Date.Format("2006-01-02")).
			Str("clock", clock).
			Msg("No intraday sample, falling back to daily price")
		return fallback
	}
	return price
}

func checkOrdered(symbol string, bars []models.PriceBar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return apperrors.Wrapf(apperrors.ErrSeriesMisordered, "%s at %s",
				symbol, bars[i].Date.Format("2006-01-02"))
		}
	}
	return nil
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
