package game

import (
	"encoding/json"
	"math/rand"
	"sort"
	"strings"

	"github.com/gosimple/unidecode"
)

const (
	PhaseTurnStart     = "turn_start"
	PhaseWordSelection = "word_selection"
	PhaseDrawing       = "drawing"
	PhaseTurnEnd       = "turn_end"
	PhaseRoundEnd      = "round_end"
)

// fullRevealThreshold is the remaining-seconds mark at which the word
// mask is revealed completely.
const fullRevealThreshold = 10

type drawingState struct {
	Phase       string
	Round       int
	TurnIndex   int
	DrawerID    string
	SecondsLeft int
	CanvasColor string

	order       []string
	wordOptions []string
	word        string
	mask        []rune
	revealOrder []int
	revealed    int
	strokes     []json.RawMessage
	archive     []TurnDrawing
	correct     map[string]bool
}

func (st *drawingState) phase() string { return st.Phase }

func (st *drawingState) snapshot(viewerID string) map[string]any {
	guessers := make([]string, 0, len(st.correct))
	for id := range st.correct {
		guessers = append(guessers, id)
	}
	sort.Strings(guessers)
	snap := map[string]any{
		"phase":            st.Phase,
		"round":            st.Round,
		"turn_index":       st.TurnIndex,
		"drawer_id":        st.DrawerID,
		"seconds_left":     st.SecondsLeft,
		"canvas_color":     st.CanvasColor,
		"mask":             string(st.mask),
		"correct_guessers": guessers,
		"strokes":          st.strokes,
	}
	if viewerID == st.DrawerID {
		snap["word"] = st.word
		if st.Phase == PhaseWordSelection {
			snap["word_options"] = st.wordOptions
		}
	}
	return snap
}

// foldGuess normalizes guesses and words for comparison: trimmed,
// lowercased, accents folded so "café" matches "cafe".
func foldGuess(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}

func (r *Room) startDrawingGame(order []string) {
	st := &drawingState{Round: 1, CanvasColor: "#ffffff", order: order, correct: map[string]bool{}}
	r.state = st
	r.beginDrawingTurn(st)
}

// beginDrawingTurn announces the next drawer and hands them the word
// choice. Turn slots of players who left are skipped; wrapping the order
// advances the round; exceeding the configured rounds ends the game.
func (r *Room) beginDrawingTurn(st *drawingState) {
	if len(r.Players) < 2 {
		r.drawingGameOver(st)
		return
	}
	for {
		if st.Round > r.Config.TotalRounds {
			r.drawingGameOver(st)
			return
		}
		if st.TurnIndex >= len(st.order) {
			st.Phase = PhaseRoundEnd
			r.broadcast("round-end", map[string]any{"round": st.Round, "leaderboard": r.leaderboard()})
			st.TurnIndex = 0
			st.Round++
			continue
		}
		if r.playerByID(st.order[st.TurnIndex]) != nil {
			break
		}
		st.TurnIndex++
	}

	drawer := r.playerByID(st.order[st.TurnIndex])
	st.DrawerID = drawer.ID
	st.word = ""
	st.mask = nil
	st.revealOrder = nil
	st.revealed = 0
	st.strokes = nil
	st.correct = map[string]bool{}
	st.SecondsLeft = 0
	for _, p := range r.Players {
		p.TurnScore = 0
	}

	st.Phase = PhaseTurnStart
	r.broadcast("turn-start", map[string]any{
		"drawer_id":   drawer.ID,
		"drawer_name": drawer.Name,
		"round":       st.Round,
		"turn_index":  st.TurnIndex,
	})

	st.wordOptions = pickWords(2)
	st.Phase = PhaseWordSelection
	r.sendTo(drawer.ID, "word-options", map[string]any{
		"options": st.wordOptions,
		"seconds": wordSelectSeconds,
	})
	r.broadcastExcept(drawer.ID, "word-selection", map[string]any{
		"drawer_id": drawer.ID,
		"seconds":   wordSelectSeconds,
	})
	r.startCountdown(wordSelectSeconds, nil, func() {
		// Drawer idle past the deadline: pick for them.
		r.applyWordSelection(st, st.wordOptions[0])
	})
}

func (r *Room) handleSelectWord(p *Player, data json.RawMessage) error {
	st, ok := r.state.(*drawingState)
	if !ok || st.Phase != PhaseWordSelection {
		return ErrWrongPhase
	}
	if p.ID != st.DrawerID {
		return ErrNotAuthorized
	}
	var body struct {
		Word string `json:"word"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ErrBadPayload
	}
	for _, opt := range st.wordOptions {
		if opt == body.Word {
			r.applyWordSelection(st, opt)
			return nil
		}
	}
	return ErrBadPayload
}

// applyWordSelection seeds the reveal mask and starts the round clock.
func (r *Room) applyWordSelection(st *drawingState, word string) {
	st.word = word
	st.wordOptions = nil
	runes := []rune(word)
	st.mask = make([]rune, len(runes))
	for i := range st.mask {
		st.mask[i] = '_'
	}
	st.revealOrder = rand.Perm(len(runes))
	st.revealed = 0
	st.SecondsLeft = r.Config.RoundSeconds
	st.Phase = PhaseDrawing

	r.broadcast("drawing-start", map[string]any{
		"drawer_id":    st.DrawerID,
		"mask":         string(st.mask),
		"seconds_left": st.SecondsLeft,
	})
	r.sendTo(st.DrawerID, "draw-this", map[string]any{"word": word})
	r.startCountdown(r.Config.RoundSeconds,
		func(remaining int) { r.drawingTick(st, remaining) },
		func() { r.endDrawingTurn(st, "timeout") },
	)
}

// drawingTick advances the clock and the reveal mask: one hidden
// character per roundSeconds/wordLength of elapsed time, everything once
// 10 seconds remain.
func (r *Room) drawingTick(st *drawingState, remaining int) {
	if st.Phase != PhaseDrawing {
		return
	}
	st.SecondsLeft = remaining

	runes := []rune(st.word)
	target := st.revealed
	if remaining <= fullRevealThreshold {
		target = len(runes)
	} else {
		elapsed := r.Config.RoundSeconds - remaining
		interval := float64(r.Config.RoundSeconds) / float64(len(runes))
		target = int(float64(elapsed) / interval)
		if target > len(runes)-1 {
			target = len(runes) - 1
		}
	}
	changed := false
	for st.revealed < target {
		idx := st.revealOrder[st.revealed]
		st.mask[idx] = runes[idx]
		st.revealed++
		changed = true
	}

	payload := map[string]any{"seconds_left": remaining}
	if changed {
		payload["mask"] = string(st.mask)
	}
	r.broadcast("tick", payload)
}

func (r *Room) drawingGuess(st *drawingState, p *Player, data json.RawMessage) error {
	if st.Phase != PhaseDrawing {
		return ErrWrongPhase
	}
	if p.ID == st.DrawerID {
		return ErrNotAuthorized
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ErrBadPayload
	}
	if st.correct[p.ID] {
		// Duplicate correct guess: ignored.
		return nil
	}

	if foldGuess(body.Text) != foldGuess(st.word) {
		r.broadcast("guess", map[string]any{"player_id": p.ID, "name": p.Name, "text": body.Text})
		return nil
	}

	st.correct[p.ID] = true
	points := DrawingGuesserPoints(st.SecondsLeft)
	p.Score += points
	p.TurnScore += points
	if d := r.playerByID(st.DrawerID); d != nil {
		d.Score += DrawerPointsPerGuess
		d.TurnScore += DrawerPointsPerGuess
	}
	r.broadcast("correct-guess", map[string]any{"player_id": p.ID, "name": p.Name, "points": points})

	if len(st.correct) >= len(r.Players)-1 {
		r.endDrawingTurn(st, "all_guessed")
	}
	return nil
}

func (r *Room) handleStroke(p *Player, data json.RawMessage) error {
	st, ok := r.state.(*drawingState)
	if !ok || st.Phase != PhaseDrawing {
		return ErrWrongPhase
	}
	if p.ID != st.DrawerID {
		return ErrNotAuthorized
	}
	stroke := append(json.RawMessage(nil), data...)
	st.strokes = append(st.strokes, stroke)
	r.broadcastExcept(p.ID, "stroke", stroke)
	return nil
}

func (r *Room) handleClearCanvas(p *Player) error {
	st, ok := r.state.(*drawingState)
	if !ok || st.Phase != PhaseDrawing {
		return ErrWrongPhase
	}
	if p.ID != st.DrawerID {
		return ErrNotAuthorized
	}
	st.strokes = nil
	r.broadcast("canvas-cleared", nil)
	return nil
}

func (r *Room) handleCanvasColor(p *Player, data json.RawMessage) error {
	st, ok := r.state.(*drawingState)
	if !ok || st.Phase != PhaseDrawing {
		return ErrWrongPhase
	}
	if p.ID != st.DrawerID {
		return ErrNotAuthorized
	}
	var body struct {
		Color string `json:"color"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Color == "" {
		return ErrBadPayload
	}
	st.CanvasColor = body.Color
	r.broadcast("canvas-color", map[string]any{"color": body.Color})
	return nil
}

// handleSyncStrokes replays the full stroke log to one participant,
// used after a reconnect mid-turn.
func (r *Room) handleSyncStrokes(p *Player) error {
	st, ok := r.state.(*drawingState)
	if !ok {
		return ErrWrongPhase
	}
	unicast(p.conn, "strokes-sync", map[string]any{
		"strokes":      st.strokes,
		"canvas_color": st.CanvasColor,
		"mask":         string(st.mask),
		"seconds_left": st.SecondsLeft,
	})
	return nil
}

// endDrawingTurn closes the turn on whichever came first — every
// non-drawer guessed, the clock ran out, or the drawer left — and
// schedules the advance.
func (r *Room) endDrawingTurn(st *drawingState, reason string) {
	r.cancelCountdown()
	st.Phase = PhaseTurnEnd

	if len(st.strokes) > 0 {
		st.archive = append(st.archive, TurnDrawing{
			Word:    st.word,
			Strokes: append([]json.RawMessage(nil), st.strokes...),
		})
	}

	turnScores := make(map[string]int, len(r.Players))
	for _, p := range r.Players {
		turnScores[p.ID] = p.TurnScore
	}
	r.broadcast("turn-end", map[string]any{
		"word":        st.word,
		"reason":      reason,
		"turn_scores": turnScores,
		"leaderboard": r.leaderboard(),
	})

	r.startCountdown(turnSummarySeconds, nil, func() {
		st.TurnIndex++
		r.beginDrawingTurn(st)
	})
}

// drawingGameOver archives every turn's canvas, including one cut short
// by the game ending mid-draw.
func (r *Room) drawingGameOver(st *drawingState) {
	if st.Phase == PhaseDrawing && len(st.strokes) > 0 {
		st.archive = append(st.archive, TurnDrawing{
			Word:    st.word,
			Strokes: append([]json.RawMessage(nil), st.strokes...),
		})
	}
	st.Phase = PhaseGameOver
	if len(st.archive) > 0 {
		turns := append([]TurnDrawing(nil), st.archive...)
		go r.reg.archiver.SaveDrawing(r.ID, r.Name, turns)
	}
	r.finishGame()
}

func (r *Room) drawingPlayerRemoved(st *drawingState, playerID string) {
	if st.Phase == PhaseGameOver {
		return
	}
	if len(r.Players) < 2 {
		r.drawingGameOver(st)
		return
	}
	switch st.Phase {
	case PhaseTurnStart, PhaseWordSelection:
		if playerID == st.DrawerID {
			st.TurnIndex++
			r.beginDrawingTurn(st)
		}
	case PhaseDrawing:
		if playerID == st.DrawerID {
			r.endDrawingTurn(st, "drawer_left")
			return
		}
		delete(st.correct, playerID)
		if len(st.correct) >= len(r.Players)-1 {
			r.endDrawingTurn(st, "all_guessed")
		}
	}
}
