package game

import "encoding/json"

const (
	PhasePicking  = "picking"
	PhaseGuessing = "guessing"
)

// CBDifficulty selects code length, the shared attempt budget and the
// guessing clock for a code-breaker turn.
type CBDifficulty string

const (
	DifficultyEasy   CBDifficulty = "easy"
	DifficultyMedium CBDifficulty = "medium"
	DifficultyHard   CBDifficulty = "hard"
)

type difficultyParams struct {
	Length   int
	Attempts int
	Seconds  int
	Bonus    int
}

var difficulties = map[CBDifficulty]difficultyParams{
	DifficultyEasy:   {Length: 4, Attempts: 10, Seconds: 120, Bonus: 0},
	DifficultyMedium: {Length: 5, Attempts: 8, Seconds: 150, Bonus: 500},
	DifficultyHard:   {Length: 6, Attempts: 6, Seconds: 180, Bonus: 1000},
}

var alphabets = map[string][]string{
	"numbers": {"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"},
	"colors":  {"red", "orange", "yellow", "green", "blue", "purple", "pink", "brown"},
	"symbols": {"star", "moon", "sun", "heart", "diamond", "clover", "bolt", "wave"},
}

// makerSurvivalPoints is the maker's award when their code outlives the
// attempt budget or the clock.
const makerSurvivalPoints = 500

type attemptRecord struct {
	PlayerID string   `json:"player_id"`
	Name     string   `json:"name"`
	Guess    []string `json:"guess"`
	Clue     Clue     `json:"clue"`
}

type codeBreakerState struct {
	Phase       string
	Round       int
	MakerIndex  int
	MakerID     string
	Difficulty  CBDifficulty
	Alphabet    string
	SolverID    string
	SecondsLeft int

	order    []string
	secret   []string
	attempts []attemptRecord
}

func (st *codeBreakerState) phase() string { return st.Phase }

func (st *codeBreakerState) params() difficultyParams {
	return difficulties[st.Difficulty]
}

func (st *codeBreakerState) snapshot(viewerID string) map[string]any {
	snap := map[string]any{
		"phase":         st.Phase,
		"round":         st.Round,
		"maker_id":      st.MakerID,
		"difficulty":    st.Difficulty,
		"alphabet":      st.Alphabet,
		"code_length":   st.params().Length,
		"attempts":      st.attempts,
		"attempts_left": st.params().Attempts - len(st.attempts),
		"solver_id":     st.SolverID,
		"seconds_left":  st.SecondsLeft,
	}
	// The secret is visible to its maker only, until the turn resolves.
	if viewerID == st.MakerID || st.Phase == PhaseTurnEnd || st.Phase == PhaseGameOver {
		snap["secret"] = st.secret
	}
	return snap
}

func (r *Room) startCodeBreakerGame(order []string) {
	st := &codeBreakerState{
		Round:      1,
		Difficulty: DifficultyMedium,
		Alphabet:   "numbers",
		order:      order,
	}
	r.state = st
	r.beginPickingTurn(st)
}

// beginPickingTurn rotates the maker role. Slots of players who left are
// skipped; wrapping the order advances the round; exceeding the
// configured rounds ends the game.
func (r *Room) beginPickingTurn(st *codeBreakerState) {
	if len(r.Players) < 2 {
		r.codeBreakerGameOver(st)
		return
	}
	for {
		if st.Round > r.Config.TotalRounds {
			r.codeBreakerGameOver(st)
			return
		}
		if st.MakerIndex >= len(st.order) {
			st.Phase = PhaseRoundEnd
			r.broadcast("round-end", map[string]any{"round": st.Round, "leaderboard": r.leaderboard()})
			st.MakerIndex = 0
			st.Round++
			continue
		}
		if r.playerByID(st.order[st.MakerIndex]) != nil {
			break
		}
		st.MakerIndex++
	}

	maker := r.playerByID(st.order[st.MakerIndex])
	st.MakerID = maker.ID
	st.SolverID = ""
	st.secret = nil
	st.attempts = nil
	st.SecondsLeft = 0
	for _, p := range r.Players {
		p.TurnScore = 0
	}

	st.Phase = PhasePicking
	r.broadcast("picking-start", map[string]any{
		"maker_id":   maker.ID,
		"maker_name": maker.Name,
		"round":      st.Round,
		"difficulty": st.Difficulty,
		"alphabet":   st.Alphabet,
		"seconds":    pickingSeconds,
	})
	r.startCountdown(pickingSeconds, nil, func() {
		// Maker never set a code: skip their turn.
		r.broadcast("turn-skipped", map[string]any{"maker_id": st.MakerID})
		st.MakerIndex++
		r.beginPickingTurn(st)
	})
}

func (r *Room) handleCodeSettings(p *Player, data json.RawMessage) error {
	st, ok := r.state.(*codeBreakerState)
	if !ok || st.Phase != PhasePicking {
		return ErrWrongPhase
	}
	if p.ID != st.MakerID {
		return ErrNotAuthorized
	}
	var body struct {
		Difficulty CBDifficulty `json:"difficulty"`
		Alphabet   string       `json:"alphabet"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ErrBadPayload
	}
	if _, ok := difficulties[body.Difficulty]; !ok {
		return ErrBadPayload
	}
	if _, ok := alphabets[body.Alphabet]; !ok {
		return ErrBadPayload
	}
	st.Difficulty = body.Difficulty
	st.Alphabet = body.Alphabet
	params := st.params()
	r.broadcast("code-settings", map[string]any{
		"difficulty":  st.Difficulty,
		"alphabet":    st.Alphabet,
		"code_length": params.Length,
		"attempts":    params.Attempts,
		"seconds":     params.Seconds,
	})
	return nil
}

func inAlphabet(alphabet string, symbol string) bool {
	for _, s := range alphabets[alphabet] {
		if s == symbol {
			return true
		}
	}
	return false
}

func (r *Room) handleSecret(p *Player, data json.RawMessage) error {
	st, ok := r.state.(*codeBreakerState)
	if !ok || st.Phase != PhasePicking {
		return ErrWrongPhase
	}
	if p.ID != st.MakerID {
		return ErrNotAuthorized
	}
	var body struct {
		Secret []string `json:"secret"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ErrBadPayload
	}
	params := st.params()
	if len(body.Secret) != params.Length {
		return ErrBadPayload
	}
	for _, sym := range body.Secret {
		if !inAlphabet(st.Alphabet, sym) {
			return ErrBadPayload
		}
	}

	st.secret = body.Secret
	st.SecondsLeft = params.Seconds
	st.Phase = PhaseGuessing
	r.broadcast("guessing-start", map[string]any{
		"maker_id":    st.MakerID,
		"difficulty":  st.Difficulty,
		"alphabet":    st.Alphabet,
		"code_length": params.Length,
		"attempts":    params.Attempts,
		"seconds":     params.Seconds,
	})
	r.startCountdown(params.Seconds,
		func(remaining int) { r.codeBreakerTick(st, remaining) },
		func() { r.endCodeTurn(st, "timeout") },
	)
	return nil
}

func (r *Room) codeBreakerTick(st *codeBreakerState, remaining int) {
	if st.Phase != PhaseGuessing {
		return
	}
	st.SecondsLeft = remaining
	r.broadcast("tick", map[string]any{"seconds_left": remaining})
}

// codeBreakerGuess consumes one attempt from the shared budget. The clue
// goes to everyone so the breakers can reason together.
func (r *Room) codeBreakerGuess(st *codeBreakerState, p *Player, data json.RawMessage) error {
	if st.Phase != PhaseGuessing {
		return ErrWrongPhase
	}
	if p.ID == st.MakerID {
		return ErrNotAuthorized
	}
	var body struct {
		Guess []string `json:"guess"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ErrBadPayload
	}
	params := st.params()
	if len(body.Guess) != params.Length {
		return ErrBadPayload
	}
	for _, sym := range body.Guess {
		if !inAlphabet(st.Alphabet, sym) {
			return ErrBadPayload
		}
	}

	clue := CompareGuess(st.secret, body.Guess)
	st.attempts = append(st.attempts, attemptRecord{
		PlayerID: p.ID, Name: p.Name, Guess: body.Guess, Clue: clue,
	})
	r.broadcast("guess-result", map[string]any{
		"player_id":     p.ID,
		"name":          p.Name,
		"guess":         body.Guess,
		"clue":          clue,
		"attempts_left": params.Attempts - len(st.attempts),
	})

	if clue.Correct == params.Length {
		st.SolverID = p.ID
		points := CodeBreakerPoints(len(st.attempts), st.SecondsLeft, st.Difficulty)
		p.Score += points
		p.TurnScore += points
		r.broadcast("code-cracked", map[string]any{"player_id": p.ID, "name": p.Name, "points": points})
		r.endCodeTurn(st, "cracked")
		return nil
	}
	if len(st.attempts) >= params.Attempts {
		r.endCodeTurn(st, "exhausted")
	}
	return nil
}

// endCodeTurn reveals the secret, settles the maker's award and schedules
// the next picking turn.
func (r *Room) endCodeTurn(st *codeBreakerState, reason string) {
	r.cancelCountdown()
	st.Phase = PhaseTurnEnd

	if reason != "cracked" {
		if maker := r.playerByID(st.MakerID); maker != nil {
			maker.Score += makerSurvivalPoints
			maker.TurnScore += makerSurvivalPoints
		}
	}

	turnScores := make(map[string]int, len(r.Players))
	for _, p := range r.Players {
		turnScores[p.ID] = p.TurnScore
	}
	r.broadcast("turn-end", map[string]any{
		"secret":      st.secret,
		"reason":      reason,
		"attempts":    st.attempts,
		"turn_scores": turnScores,
		"leaderboard": r.leaderboard(),
	})

	r.startCountdown(turnSummarySeconds, nil, func() {
		st.MakerIndex++
		r.beginPickingTurn(st)
	})
}

func (r *Room) codeBreakerGameOver(st *codeBreakerState) {
	st.Phase = PhaseGameOver
	r.finishGame()
}

func (r *Room) codeBreakerPlayerRemoved(st *codeBreakerState, playerID string) {
	if st.Phase == PhaseGameOver {
		return
	}
	if len(r.Players) < 2 {
		r.codeBreakerGameOver(st)
		return
	}
	if playerID != st.MakerID {
		return
	}
	switch st.Phase {
	case PhasePicking:
		st.MakerIndex++
		r.beginPickingTurn(st)
	case PhaseGuessing:
		r.endCodeTurn(st, "maker_left")
	}
}
