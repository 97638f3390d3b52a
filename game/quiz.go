package game

import (
	"encoding/json"
	"log"
	"math/rand"
	"time"
)

const (
	PhaseAnswering = "answering"
	PhaseResults   = "results"
)

// quizAnswer captures a locked-in choice; correctness is decided at
// submission time, not at round settlement.
type quizAnswer struct {
	Option  string
	Correct bool
	Elapsed time.Duration
}

type quizState struct {
	Phase       string
	Round       int
	Prompt      string
	Options     []string
	SecondsLeft int

	answer     string
	answers    map[string]quizAnswer
	roundStart time.Time
}

func (st *quizState) phase() string { return st.Phase }

func (st *quizState) snapshot(string) map[string]any {
	answered := make([]string, 0, len(st.answers))
	for id := range st.answers {
		answered = append(answered, id)
	}
	snap := map[string]any{
		"phase":        st.Phase,
		"round":        st.Round,
		"prompt":       st.Prompt,
		"options":      st.Options,
		"seconds_left": st.SecondsLeft,
		"answered":     answered,
	}
	// The correct answer only leaves the server once the round resolved.
	if st.Phase == PhaseResults || st.Phase == PhaseGameOver {
		snap["answer"] = st.answer
	}
	return snap
}

func (r *Room) startQuizGame() {
	st := &quizState{}
	r.state = st
	r.nextQuizRound(st)
}

// nextQuizRound draws a question, shuffles its options and opens the
// answer window. A drained question source ends the game early rather
// than stalling the room.
func (r *Room) nextQuizRound(st *quizState) {
	if len(r.Players) < 2 {
		r.quizGameOver(st)
		return
	}
	st.Round++
	if st.Round > r.Config.TotalRounds {
		r.quizGameOver(st)
		return
	}

	q, err := r.reg.questions.Draw()
	if err != nil {
		log.Printf("[GAME] room %s: question draw failed: %v", r.ID, err)
		r.quizGameOver(st)
		return
	}

	options := append([]string{q.Answer}, q.Decoys...)
	rand.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	st.Prompt = q.Prompt
	st.Options = options
	st.answer = q.Answer
	st.answers = make(map[string]quizAnswer, len(r.Players))
	st.roundStart = r.reg.clock.Now()
	st.SecondsLeft = r.Config.RoundSeconds
	for _, p := range r.Players {
		p.TurnScore = 0
	}
	st.Phase = PhaseAnswering

	r.broadcast("question", map[string]any{
		"round":   st.Round,
		"prompt":  st.Prompt,
		"options": st.Options,
		"seconds": r.Config.RoundSeconds,
	})
	r.startCountdown(r.Config.RoundSeconds,
		func(remaining int) { r.quizTick(st, remaining) },
		func() { r.endQuizRound(st) },
	)
}

func (r *Room) quizTick(st *quizState, remaining int) {
	if st.Phase != PhaseAnswering {
		return
	}
	st.SecondsLeft = remaining
	r.broadcast("tick", map[string]any{"seconds_left": remaining})
}

// handleAnswer records one locked-in choice per player. Which option was
// picked stays hidden until results; only the fact of answering is
// broadcast. The round closes early once every player has answered.
func (r *Room) handleAnswer(p *Player, data json.RawMessage) error {
	st, ok := r.state.(*quizState)
	if !ok || st.Phase != PhaseAnswering {
		return ErrWrongPhase
	}
	if _, done := st.answers[p.ID]; done {
		return nil
	}
	var body struct {
		Option string `json:"option"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ErrBadPayload
	}
	valid := false
	for _, opt := range st.Options {
		if opt == body.Option {
			valid = true
			break
		}
	}
	if !valid {
		return ErrBadPayload
	}

	st.answers[p.ID] = quizAnswer{
		Option:  body.Option,
		Correct: body.Option == st.answer,
		Elapsed: r.reg.clock.Now().Sub(st.roundStart),
	}
	r.broadcast("player-answered", map[string]any{"player_id": p.ID, "name": p.Name})

	if r.allAnswered(st) {
		r.endQuizRound(st)
	}
	return nil
}

func (r *Room) allAnswered(st *quizState) bool {
	for _, p := range r.Players {
		if _, ok := st.answers[p.ID]; !ok {
			return false
		}
	}
	return true
}

// endQuizRound settles scores for the round and either schedules the next
// question or, on the final round, goes straight to game over.
func (r *Room) endQuizRound(st *quizState) {
	r.cancelCountdown()
	st.Phase = PhaseResults

	window := time.Duration(r.Config.RoundSeconds) * time.Second
	results := make([]map[string]any, 0, len(r.Players))
	for _, p := range r.Players {
		ans, answered := st.answers[p.ID]
		points := 0
		if answered {
			points = QuizPoints(ans.Elapsed, window, ans.Correct)
		}
		p.Score += points
		p.TurnScore = points
		results = append(results, map[string]any{
			"player_id": p.ID,
			"name":      p.Name,
			"option":    ans.Option,
			"correct":   ans.Correct,
			"points":    points,
		})
	}
	r.broadcast("round-results", map[string]any{
		"round":       st.Round,
		"answer":      st.answer,
		"results":     results,
		"leaderboard": r.leaderboard(),
	})

	if st.Round >= r.Config.TotalRounds {
		r.quizGameOver(st)
		return
	}
	r.startCountdown(quizResultsSeconds, nil, func() {
		r.nextQuizRound(st)
	})
}

func (r *Room) quizGameOver(st *quizState) {
	st.Phase = PhaseGameOver
	r.finishGame()
}

// quizPlayerRemoved drops the departed player's answer so the answered
// set never outgrows the roster, then re-checks the early-close
// condition: the departure may have been the last thing holding the
// round open.
func (r *Room) quizPlayerRemoved(st *quizState, playerID string) {
	if st.Phase == PhaseGameOver {
		return
	}
	delete(st.answers, playerID)
	if len(r.Players) < 2 {
		r.quizGameOver(st)
		return
	}
	if st.Phase == PhaseAnswering && r.allAnswered(st) {
		r.endQuizRound(st)
	}
}

type staticQuestions struct {
	pool []Question
}

// builtinQuestions is the fallback question source used when no database
// backed source is wired in.
func builtinQuestions() QuestionSource {
	return &staticQuestions{pool: []Question{
		{Prompt: "Which planet has the most moons?", Answer: "Saturn", Decoys: []string{"Jupiter", "Neptune", "Mars"}},
		{Prompt: "What is the largest ocean on Earth?", Answer: "Pacific", Decoys: []string{"Atlantic", "Indian", "Arctic"}},
		{Prompt: "How many strings does a standard violin have?", Answer: "4", Decoys: []string{"5", "6", "7"}},
		{Prompt: "Which element has the chemical symbol Fe?", Answer: "Iron", Decoys: []string{"Fluorine", "Lead", "Tin"}},
		{Prompt: "In which year did the first moon landing happen?", Answer: "1969", Decoys: []string{"1965", "1971", "1959"}},
		{Prompt: "What is the capital of Canada?", Answer: "Ottawa", Decoys: []string{"Toronto", "Vancouver", "Montreal"}},
		{Prompt: "Which animal is the fastest on land?", Answer: "Cheetah", Decoys: []string{"Lion", "Pronghorn", "Greyhound"}},
		{Prompt: "How many sides does a hexagon have?", Answer: "6", Decoys: []string{"5", "7", "8"}},
		{Prompt: "Which language has the most native speakers?", Answer: "Mandarin Chinese", Decoys: []string{"English", "Spanish", "Hindi"}},
		{Prompt: "What is the smallest prime number?", Answer: "2", Decoys: []string{"1", "3", "0"}},
		{Prompt: "Which country invented paper?", Answer: "China", Decoys: []string{"Egypt", "Greece", "India"}},
		{Prompt: "What gas do plants absorb from the atmosphere?", Answer: "Carbon dioxide", Decoys: []string{"Oxygen", "Nitrogen", "Hydrogen"}},
	}}
}

func (s *staticQuestions) Draw() (Question, error) {
	return s.pool[rand.Intn(len(s.pool))], nil
}
