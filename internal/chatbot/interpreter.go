// Package chatbot implements the rule-based command interpreter. A line of
// free text resolves to exactly one of six intents, or to a help reply; the
// rules are an ordered list of (pattern, handler) pairs evaluated
// first-match-wins, not a grammar.
package chatbot

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"spendsense/internal/core"
	"spendsense/internal/session"
)

type Intent string

const (
	IntentAddExpense      Intent = "add_expense"
	IntentTotalThisMonth  Intent = "total_this_month"
	IntentTotalToday      Intent = "total_today"
	IntentSpentOnCategory Intent = "spent_on_category"
	IntentListLastN       Intent = "list_last_n"
	IntentClearAll        Intent = "clear_all"
	IntentUnrecognized    Intent = "unrecognized"
)

// Greeting opens a chat session.
const Greeting = "Hey! I'm SpendBot. I can add, edit, and summarize. " +
	"Try: 'add 250 food burger' or 'total this month' or 'spent on food'."

// helpReply is the fixed reply for unmatched input. Unrecognized is a normal
// terminal outcome, not an error.
const helpReply = "I didn't get that. Try: 'add 120 food pizza', " +
	"'total this month', 'spent on food', 'list last 5'."

// SuggestedCommands seed the UI chips and the REPL hint line.
var SuggestedCommands = []string{
	"add 120 food pizza",
	"total this month",
	"list last 5",
	"spent on transport",
}

// listLimit caps how many records 'list last n' will show.
const listLimit = 10

const categoryAlt = "food|transport|shopping|bills|entertainment|health|education|other"

var (
	addRe        = regexp.MustCompile(`(?i)(?:add|spent|spend)\s+(\d+(?:\.\d{1,2})?)\s+(` + categoryAlt + `)\s*(.*)`)
	totalMonthRe = regexp.MustCompile(`(?i)total\s+(?:this\s+month|month)`)
	totalTodayRe = regexp.MustCompile(`(?i)total\s+today`)
	spentOnRe    = regexp.MustCompile(`(?i)spent\s+on\s+(` + categoryAlt + `)`)
	listLastRe   = regexp.MustCompile(`(?i)list\s+last\s+(\d+)`)
	clearAllRe   = regexp.MustCompile(`(?i)clear\s+all`)
)

// Result is one logical reply. Multi-line replies (list last n) stay a single
// string; callers split into display lines.
type Result struct {
	Intent Intent
	Reply  string
}

func (r Result) Lines() []string {
	return strings.Split(r.Reply, "\n")
}

// Interpreter maps text commands onto the session. It only ever reads
// the cache; mutations go through the session's sync discipline.
type Interpreter struct {
	session *session.Session
	now     func() time.Time
}

func New(s *session.Session) *Interpreter {
	return NewWithClock(s, time.Now)
}

func NewWithClock(s *session.Session, clock func() time.Time) *Interpreter {
	return &Interpreter{session: s, now: clock}
}

type rule struct {
	intent Intent
	re     *regexp.Regexp
	handle func(i *Interpreter, ctx context.Context, m []string) (string, error)
}

// Order matters: AddExpense is checked before the total/spent/list/clear
// patterns, and a line satisfying several patterns takes the first.
var rules = []rule{
	{IntentAddExpense, addRe, (*Interpreter).addExpense},
	{IntentTotalThisMonth, totalMonthRe, (*Interpreter).totalThisMonth},
	{IntentTotalToday, totalTodayRe, (*Interpreter).totalToday},
	{IntentSpentOnCategory, spentOnRe, (*Interpreter).spentOnCategory},
	{IntentListLastN, listLastRe, (*Interpreter).listLastN},
	{IntentClearAll, clearAllRe, (*Interpreter).clearAll},
}

// Interpret classifies one line of input and executes it. Unmatched input is
// answered with the help reply and nil error; a non-nil error only means a
// side effect against the store failed, and its message is what the caller
// should surface.
func (i *Interpreter) Interpret(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	for _, r := range rules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		reply, err := r.handle(i, ctx, m)
		if err != nil {
			return Result{Intent: r.intent}, err
		}
		return Result{Intent: r.intent, Reply: reply}, nil
	}
	return Result{Intent: IntentUnrecognized, Reply: helpReply}, nil
}

func (i *Interpreter) addExpense(ctx context.Context, m []string) (string, error) {
	cents, err := core.ParseAmountToCents(m[1])
	if err != nil {
		return "", fmt.Errorf("amount %q: %w", m[1], err)
	}
	cat, err := core.ParseCategory(m[2])
	if err != nil {
		return "", err
	}
	note := strings.TrimSpace(m[3])

	e := core.Expense{
		Amount:   core.Money{Cents: cents},
		Category: cat,
		Date:     core.Today(i.now()),
		Note:     note,
	}
	if _, err := i.session.Add(ctx, e); err != nil {
		return "", err
	}

	reply := fmt.Sprintf("Added %s in %s", core.FormatAmount(e.Amount), cat)
	if note != "" {
		reply += " — " + note
	}
	return reply + ".", nil
}

func (i *Interpreter) totalThisMonth(_ context.Context, _ []string) (string, error) {
	stats := i.session.Stats(i.now())
	return fmt.Sprintf("This month total: %s.", core.FormatAmount(stats.SumMonth)), nil
}

func (i *Interpreter) totalToday(_ context.Context, _ []string) (string, error) {
	stats := i.session.Stats(i.now())
	return fmt.Sprintf("Today total: %s.", core.FormatAmount(stats.SumToday)), nil
}

func (i *Interpreter) spentOnCategory(_ context.Context, m []string) (string, error) {
	cat, err := core.ParseCategory(m[1])
	if err != nil {
		return "", err
	}
	stats := i.session.Stats(i.now())
	return fmt.Sprintf("This month in %s: %s.", cat, core.FormatAmount(stats.ByCategory[cat])), nil
}

func (i *Interpreter) listLastN(_ context.Context, m []string) (string, error) {
	n, err := strconv.Atoi(m[1])
	if err != nil || n > listLimit {
		n = listLimit
	}

	txns := i.session.Snapshot()
	if len(txns) == 0 {
		return "No transactions yet.", nil
	}

	// The cache is store-ordered newest first; "last n" means the n most
	// recent records, displayed oldest of that tail first. The header keeps
	// the requested n even when fewer records exist.
	count := n
	if count > len(txns) {
		count = len(txns)
	}
	recent := txns[:count]

	var b strings.Builder
	fmt.Fprintf(&b, "Last %d:", n)
	for idx := len(recent) - 1; idx >= 0; idx-- {
		t := recent[idx]
		fmt.Fprintf(&b, "\n%s · %s · %s", t.Date.Format("02 Jan"), t.Category, core.FormatAmount(t.Amount))
		if t.Note != "" {
			b.WriteString(" · " + t.Note)
		}
	}
	return b.String(), nil
}

func (i *Interpreter) clearAll(ctx context.Context, _ []string) (string, error) {
	if _, err := i.session.ClearAll(ctx); err != nil {
		return "", err
	}
	return "Cleared all transactions.", nil
}
