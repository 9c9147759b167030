package bot

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/billkeeper/internal/models"
)

// ParsedObligation is the result of parsing an /add command.
type ParsedObligation struct {
	Name    string
	Amount  decimal.Decimal
	DueDate *time.Time
	DueTime string
}

// ErrAddUsage indicates the /add arguments did not match the expected format.
var ErrAddUsage = errors.New("expected: /add <name> <amount> [due <date/time>]")

// timeOfDayRegex detects whether a due expression carries a time component,
// e.g. "6pm", "18:00", "6 pm", "noon", "midnight".
var timeOfDayRegex = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}|\d{1,2}\s?(am|pm)|noon|midnight)`)

// ParseAddCommand parses "/add <name> <amount> [due <when>]" arguments.
// The due expression accepts natural language ("tomorrow 6pm", "friday") as
// well as explicit dates ("2026-09-15 18:00"). The countdown only runs when
// the expression includes a time of day.
func ParseAddCommand(args string, now time.Time, loc *time.Location) (*ParsedObligation, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return nil, ErrAddUsage
	}

	var duePart string
	if idx := strings.Index(strings.ToLower(args), " due "); idx != -1 {
		duePart = strings.TrimSpace(args[idx+len(" due "):])
		args = strings.TrimSpace(args[:idx])
	}

	fields := strings.Fields(args)
	if len(fields) < 2 {
		return nil, ErrAddUsage
	}

	amount, err := models.ParseAmount(fields[len(fields)-1])
	if err != nil {
		return nil, err
	}

	name := strings.Join(fields[:len(fields)-1], " ")
	if err := models.ValidateName(name); err != nil {
		return nil, err
	}

	parsed := &ParsedObligation{
		Name:   name,
		Amount: amount,
	}

	if duePart != "" {
		dueDate, dueTime, err := parseDueExpression(duePart, now, loc)
		if err != nil {
			return nil, err
		}
		parsed.DueDate = dueDate
		parsed.DueTime = dueTime
	}

	return parsed, nil
}

// parseDueExpression resolves a natural-language due expression into a
// calendar date plus an optional time of day.
func parseDueExpression(input string, now time.Time, loc *time.Location) (*time.Time, string, error) {
	cfg := &dateparser.Configuration{
		CurrentTime:     now.In(loc),
		DefaultTimezone: loc,
	}

	result, err := dateparser.Parse(cfg, input)
	if err != nil {
		return nil, "", fmt.Errorf("could not understand due date %q", input)
	}

	due := result.Time.In(loc)
	dueDate := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, loc)

	dueTime := ""
	if timeOfDayRegex.MatchString(input) || due.Hour() != 0 || due.Minute() != 0 {
		dueTime = due.Format(models.DueTimeLayout)
	}

	return &dueDate, dueTime, nil
}

// ParsedItem is the result of parsing an /additem command.
type ParsedItem struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// ErrAddItemUsage indicates the /additem arguments did not match the
// expected format.
var ErrAddItemUsage = errors.New("expected: /additem <name> <price> [quantity]")

// ParseAddItemCommand parses "/additem <name> <price> [quantity]" arguments.
// A trailing whole number is the quantity; the value before it is the price.
func ParseAddItemCommand(args string) (*ParsedItem, error) {
	fields := strings.Fields(strings.TrimSpace(args))
	if len(fields) < 2 {
		return nil, ErrAddItemUsage
	}

	quantity := 1
	if len(fields) >= 3 {
		if n, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
			if n < 1 {
				return nil, models.ErrQuantityInvalid
			}
			quantity = n
			fields = fields[:len(fields)-1]
		}
	}

	price, err := models.ParseAmount(fields[len(fields)-1])
	if err != nil {
		return nil, err
	}

	return &ParsedItem{
		Name:     strings.Join(fields[:len(fields)-1], " "),
		Price:    price,
		Quantity: quantity,
	}, nil
}

// ParseIDArg parses a single positive integer id argument for commands like
// /paid, /delete, /dismiss and /consume.
func ParseIDArg(args string) (int, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return 0, errors.New("an id is required")
	}

	var id int
	if _, err := fmt.Sscanf(args, "%d", &id); err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args)
	}
	return id, nil
}
