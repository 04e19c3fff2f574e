package bot

import (
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/thoas/go-funk"

	"github.com/pokerpit/holdem/card"
	"github.com/pokerpit/holdem/evaluator"
)

type Action string

const (
	Action_Fold  Action = "fold"
	Action_Check Action = "check"
	Action_Call  Action = "call"
	Action_Bet   Action = "bet"
	Action_Raise Action = "raise"
)

// Decision is the engine's chosen move. Amount is the total chips
// committed this round and only meaningful for bet and raise.
type Decision struct {
	Action Action `json:"action"`
	Amount int64  `json:"amount"`
}

// Context is a read-only snapshot of the table from the bot seat's
// point of view, taken under the game lock before deciding.
type Context struct {
	HoleCards      []card.Card
	CommunityCards []card.Card
	Pot            int64
	CurrentBet     int64
	SeatBet        int64
	Stack          int64
	BigBlind       int64
	ActiveSeats    int
	DealerDistance int
	LegalActions   []Action
}

// DecisionEngine turns a profile plus a table snapshot into a move.
// Strategy tiers by difficulty: basic plays hand strength alone,
// intermediate folds in position and pot odds, advanced adds play-style
// weighting and positional bluff raises.
type DecisionEngine struct {
	profile *Profile
	r       *rand.Rand
	logger  *logrus.Entry
}

type DecisionEngineOpt func(*DecisionEngine)

// WithRand fixes the random source for deterministic play.
func WithRand(r *rand.Rand) DecisionEngineOpt {
	return func(e *DecisionEngine) {
		e.r = r
	}
}

func WithLogger(l *logrus.Entry) DecisionEngineOpt {
	return func(e *DecisionEngine) {
		e.logger = l
	}
}

func NewDecisionEngine(profile *Profile, opts ...DecisionEngineOpt) *DecisionEngine {
	e := &DecisionEngine{
		profile: profile,
		r:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		e.logger = l.WithField("bot", profile.PlayerID)
	}
	return e
}

// MakeDecision picks a legal move for the snapshot. It always returns a
// decision drawn from ctx.LegalActions.
func (e *DecisionEngine) MakeDecision(ctx *Context) Decision {
	strength := e.handStrength(ctx)
	position := e.positionFactor(ctx)
	potOdds := e.potOdds(ctx)
	bluffing := e.shouldBluff(strength)

	e.logger.WithFields(logrus.Fields{
		"strength": strength,
		"position": position,
		"pot_odds": potOdds,
		"bluffing": bluffing,
	}).Debug("bot deciding")

	var d Decision
	switch e.profile.Difficulty {
	case Difficulty_Basic:
		d = e.decideBasic(ctx, strength, bluffing)
	case Difficulty_Intermediate:
		d = e.decideIntermediate(ctx, strength, position, potOdds, bluffing)
	default:
		d = e.decideAdvanced(ctx, strength, position, potOdds, bluffing)
	}
	return d
}

// ThinkingTime draws a pacing delay from the profile's window.
func (e *DecisionEngine) ThinkingTime() time.Duration {
	min := e.profile.ThinkingTimeMin
	max := e.profile.ThinkingTimeMax
	if max <= min {
		return min
	}
	return min + time.Duration(e.r.Int63n(int64(max-min)))
}

func (e *DecisionEngine) handStrength(ctx *Context) float64 {
	if len(ctx.HoleCards) != 2 {
		return 0.0
	}
	if len(ctx.CommunityCards) == 0 {
		return e.preflopStrength(ctx.HoleCards)
	}

	all := append(append([]card.Card{}, ctx.HoleCards...), ctx.CommunityCards...)
	if len(all) < 5 {
		return e.preflopStrength(ctx.HoleCards)
	}

	result, err := evaluator.Evaluate(all)
	if err != nil {
		e.logger.WithError(err).Warn("hand evaluation failed")
		return 0.0
	}

	// Map the nine categories onto [0, 1], strongest first, with a
	// small noise band for uncertainty.
	strength := 1.0 - float64(result.Category-1)/9.0
	strength += e.uniform(-0.05, 0.05)
	return clamp(strength, 0.0, 1.0)
}

func (e *DecisionEngine) preflopStrength(hole []card.Card) float64 {
	r1, r2 := hole[0].Value(), hole[1].Value()
	suited := hole[0].Suit == hole[1].Suit
	high, low := r1, r2
	if low > high {
		high, low = low, high
	}

	switch {
	case r1 == r2 && r1 >= 10:
		return e.uniform(0.8, 0.95)
	case r1 == r2 && r1 >= 7:
		return e.uniform(0.6, 0.8)
	case r1 == r2:
		return e.uniform(0.4, 0.6)
	}

	suitedOr := func(a, b, c, d float64) float64 {
		if suited {
			return e.uniform(a, b)
		}
		return e.uniform(c, d)
	}

	switch {
	case high == 14 && low >= 10:
		return suitedOr(0.7, 0.9, 0.6, 0.8)
	case high == 14 && low >= 7:
		return suitedOr(0.5, 0.7, 0.4, 0.6)
	case high == 14:
		return suitedOr(0.3, 0.5, 0.2, 0.4)
	case high == 13 && low >= 11:
		return suitedOr(0.6, 0.8, 0.5, 0.7)
	case high == 13 && low >= 9:
		return suitedOr(0.4, 0.6, 0.3, 0.5)
	case high >= 11 && low >= 10:
		return suitedOr(0.5, 0.7, 0.4, 0.6)
	case high-low == 1:
		return suitedOr(0.3, 0.5, 0.2, 0.4)
	}

	return e.uniform(0.1, 0.3)
}

// positionFactor maps the seat's distance past the dealer onto [0, 1],
// later positions scoring higher. Heads-up it is a flat 0.5.
func (e *DecisionEngine) positionFactor(ctx *Context) float64 {
	if ctx.ActiveSeats <= 2 {
		return 0.5
	}
	return float64(ctx.DealerDistance) / float64(ctx.ActiveSeats-1)
}

func (e *DecisionEngine) potOdds(ctx *Context) float64 {
	call := float64(ctx.CurrentBet - ctx.SeatBet)
	if call <= 0 {
		return math.Inf(1)
	}
	pot := float64(ctx.Pot)
	if pot <= 0 {
		return 0.0
	}
	return pot / call
}

func (e *DecisionEngine) shouldBluff(strength float64) bool {
	if strength > 0.3 {
		return false
	}
	return e.r.Float64() < e.profile.BluffFrequency
}

func (e *DecisionEngine) decideBasic(ctx *Context, strength float64, bluffing bool) Decision {
	if bluffing && e.legal(ctx, Action_Bet) {
		return Decision{Action: Action_Bet, Amount: e.betSize(ctx, 0.5)}
	}

	if strength >= 0.7 {
		if e.legal(ctx, Action_Raise) {
			return Decision{Action: Action_Raise, Amount: e.betSize(ctx, e.profile.Aggression)}
		}
		if e.legal(ctx, Action_Bet) {
			return Decision{Action: Action_Bet, Amount: e.betSize(ctx, e.profile.Aggression)}
		}
		if e.legal(ctx, Action_Call) {
			return Decision{Action: Action_Call}
		}
	} else if strength >= 0.4 {
		if e.legal(ctx, Action_Check) {
			return Decision{Action: Action_Check}
		}
		if e.legal(ctx, Action_Call) && e.potOdds(ctx) > 2.0 {
			return Decision{Action: Action_Call}
		}
	}

	return e.giveUp(ctx)
}

func (e *DecisionEngine) decideIntermediate(ctx *Context, strength, position, potOdds float64, bluffing bool) Decision {
	adjusted := clamp(strength+(position-0.5)*0.2, 0.0, 1.0)

	if bluffing && position > 0.6 && e.legal(ctx, Action_Bet) {
		return Decision{Action: Action_Bet, Amount: e.betSize(ctx, 0.6)}
	}

	if adjusted >= 0.6 {
		if e.legal(ctx, Action_Raise) {
			return Decision{Action: Action_Raise, Amount: e.betSize(ctx, e.profile.Aggression*(1+position*0.3))}
		}
		if e.legal(ctx, Action_Bet) {
			return Decision{Action: Action_Bet, Amount: e.betSize(ctx, e.profile.Aggression)}
		}
		if e.legal(ctx, Action_Call) {
			return Decision{Action: Action_Call}
		}
	} else if adjusted >= 0.3 {
		if potOdds > 3.0 && e.legal(ctx, Action_Call) {
			return Decision{Action: Action_Call}
		}
		if e.legal(ctx, Action_Check) {
			return Decision{Action: Action_Check}
		}
		if potOdds > 2.0 && e.legal(ctx, Action_Call) {
			return Decision{Action: Action_Call}
		}
	}

	return e.giveUp(ctx)
}

func (e *DecisionEngine) decideAdvanced(ctx *Context, strength, position, potOdds float64, bluffing bool) Decision {
	adjusted := strength + (position-0.5)*0.3
	switch e.profile.PlayStyle {
	case PlayStyle_LooseAggressive:
		adjusted += 0.1
	case PlayStyle_TightPassive:
		adjusted -= 0.1
	}
	adjusted = clamp(adjusted, 0.0, 1.0)

	if bluffing && position > 0.7 {
		if e.legal(ctx, Action_Raise) && e.r.Float64() < 0.3 {
			return Decision{Action: Action_Raise, Amount: e.betSize(ctx, 0.8)}
		}
		if e.legal(ctx, Action_Bet) {
			return Decision{Action: Action_Bet, Amount: e.betSize(ctx, 0.7)}
		}
	}

	if adjusted >= 0.7 {
		multiplier := 1.0 + position*0.5
		if e.legal(ctx, Action_Raise) {
			return Decision{Action: Action_Raise, Amount: e.betSize(ctx, e.profile.Aggression*multiplier)}
		}
		if e.legal(ctx, Action_Bet) {
			return Decision{Action: Action_Bet, Amount: e.betSize(ctx, e.profile.Aggression*multiplier)}
		}
		if e.legal(ctx, Action_Call) {
			return Decision{Action: Action_Call}
		}
	} else if adjusted >= 0.5 {
		if potOdds > 2.5 && e.legal(ctx, Action_Call) {
			return Decision{Action: Action_Call}
		}
		if position > 0.6 && e.legal(ctx, Action_Bet) {
			return Decision{Action: Action_Bet, Amount: e.betSize(ctx, e.profile.Aggression*0.7)}
		}
		if e.legal(ctx, Action_Check) {
			return Decision{Action: Action_Check}
		}
	} else if adjusted >= 0.25 {
		if potOdds > 4.0 && e.legal(ctx, Action_Call) {
			return Decision{Action: Action_Call}
		}
		if e.legal(ctx, Action_Check) {
			return Decision{Action: Action_Check}
		}
	}

	return e.giveUp(ctx)
}

func (e *DecisionEngine) giveUp(ctx *Context) Decision {
	if e.legal(ctx, Action_Check) {
		return Decision{Action: Action_Check}
	}
	return Decision{Action: Action_Fold}
}

// betSize returns the total to commit this round: a pot fraction scaled
// by aggression, floored at the table minimum and capped at the stack.
func (e *DecisionEngine) betSize(ctx *Context, aggression float64) int64 {
	fraction := 0.5 + aggression*0.3
	base := int64(math.Round(float64(ctx.Pot) * fraction))

	var min int64
	if ctx.CurrentBet > 0 {
		min = ctx.CurrentBet * 2
	} else {
		min = ctx.BigBlind
	}

	size := base
	if size < min {
		size = min
	}
	if size > ctx.Stack {
		size = ctx.Stack
	}
	return size
}

func (e *DecisionEngine) legal(ctx *Context, a Action) bool {
	return funk.Contains(ctx.LegalActions, a)
}

func (e *DecisionEngine) uniform(min, max float64) float64 {
	return min + e.r.Float64()*(max-min)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
