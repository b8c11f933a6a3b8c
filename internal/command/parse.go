package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gocal/internal/calerr"
	"gocal/internal/model"
)

// Parse turns one input line into a Command. Syntax errors are reported as
// invalid-event failures with a message naming the offending token.
func Parse(line string) (Command, error) {
	tokens, err := tokenize(line)
	if err != nil {
		return Command{}, err
	}
	if len(tokens) == 0 {
		return Command{}, syntaxErr("empty command")
	}

	p := &parser{tokens: tokens}
	head := strings.ToLower(p.next())

	switch head {
	case "create":
		return p.parseCreate()
	case "edit":
		return p.parseEdit()
	case "use":
		return p.parseUse()
	case "copy":
		return p.parseCopy()
	case "print":
		return p.parsePrint()
	case "show":
		return p.parseShow()
	case "export":
		if err := p.expect("cal"); err != nil {
			return Command{}, err
		}
		file, err := p.need("file name")
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindExport, File: file}, p.done()
	case "import":
		if err := p.expect("cal"); err != nil {
			return Command{}, err
		}
		file, err := p.need("file name")
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindImport, File: file}, p.done()
	case "exit":
		return Command{Kind: KindExit}, p.done()
	default:
		return Command{}, syntaxErr("unknown command %q", head)
	}
}

type parser struct {
	tokens []string
	pos    int
}

func (p *parser) next() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

func (p *parser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *parser) need(what string) (string, error) {
	tok := p.next()
	if tok == "" {
		return "", syntaxErr("expected %s", what)
	}
	return tok, nil
}

func (p *parser) expect(keyword string) error {
	tok := p.next()
	if !strings.EqualFold(tok, keyword) {
		return syntaxErr("expected %q, got %q", keyword, tok)
	}
	return nil
}

func (p *parser) done() error {
	if p.pos < len(p.tokens) {
		return syntaxErr("unexpected trailing input %q", p.tokens[p.pos])
	}
	return nil
}

func (p *parser) dateTime(what string) (time.Time, error) {
	tok, err := p.need(what)
	if err != nil {
		return time.Time{}, err
	}
	t, perr := time.ParseInLocation(model.LayoutDateTime, tok, time.UTC)
	if perr != nil {
		return time.Time{}, syntaxErr("invalid date-time %q (want %s)", tok, model.LayoutDateTime)
	}
	return t, nil
}

func (p *parser) date(what string) (time.Time, error) {
	tok, err := p.need(what)
	if err != nil {
		return time.Time{}, err
	}
	t, perr := time.ParseInLocation(model.LayoutDate, tok, time.UTC)
	if perr != nil {
		return time.Time{}, syntaxErr("invalid date %q (want %s)", tok, model.LayoutDate)
	}
	return t, nil
}

func (p *parser) parseCreate() (Command, error) {
	switch strings.ToLower(p.next()) {
	case "calendar":
		cmd := Command{Kind: KindCreateCalendar}
		for p.peek() != "" {
			switch tok := p.next(); strings.ToLower(tok) {
			case "--name":
				name, err := p.need("calendar name")
				if err != nil {
					return Command{}, err
				}
				cmd.CalendarName = name
			case "--timezone":
				zone, err := p.need("timezone")
				if err != nil {
					return Command{}, err
				}
				cmd.Timezone = zone
			default:
				return Command{}, syntaxErr("unexpected token %q", tok)
			}
		}
		if cmd.CalendarName == "" || cmd.Timezone == "" {
			return Command{}, syntaxErr("create calendar requires --name and --timezone")
		}
		return cmd, nil

	case "event":
		return p.parseCreateEvent()

	default:
		return Command{}, syntaxErr("expected \"calendar\" or \"event\" after create")
	}
}

func (p *parser) parseCreateEvent() (Command, error) {
	cmd := Command{Kind: KindCreateEvent}

	if strings.EqualFold(p.peek(), "--autoDecline") {
		p.next()
		cmd.AutoDecline = true
	}

	subject, err := p.need("event subject")
	if err != nil {
		return Command{}, err
	}
	cmd.Subject = subject

	switch strings.ToLower(p.next()) {
	case "from":
		start, err := p.dateTime("start date-time")
		if err != nil {
			return Command{}, err
		}
		if err := p.expect("to"); err != nil {
			return Command{}, err
		}
		end, err := p.dateTime("end date-time")
		if err != nil {
			return Command{}, err
		}
		cmd.Start, cmd.End = start, end
	case "on":
		date, err := p.date("event date")
		if err != nil {
			return Command{}, err
		}
		cmd.AllDay = true
		cmd.Date = date
	default:
		return Command{}, syntaxErr("expected \"from\" or \"on\" after the subject")
	}

	if strings.EqualFold(p.peek(), "repeats") {
		p.next()
		repeat, err := p.parseRepeat()
		if err != nil {
			return Command{}, err
		}
		cmd.Repeat = repeat
	}

	for p.peek() != "" {
		switch tok := p.next(); strings.ToLower(tok) {
		case "--description":
			v, err := p.need("description value")
			if err != nil {
				return Command{}, err
			}
			cmd.Description = v
		case "--location":
			v, err := p.need("location value")
			if err != nil {
				return Command{}, err
			}
			cmd.Location = v
		case "--private":
			cmd.Private = true
		default:
			return Command{}, syntaxErr("unexpected token %q", tok)
		}
	}
	return cmd, nil
}

func (p *parser) parseRepeat() (*RepeatSpec, error) {
	spec, err := p.need("weekday letters")
	if err != nil {
		return nil, err
	}
	days, err := model.ParseWeekdays(spec)
	if err != nil {
		return nil, err
	}
	repeat := &RepeatSpec{Weekdays: days}

	switch strings.ToLower(p.next()) {
	case "for":
		tok, err := p.need("occurrence count")
		if err != nil {
			return nil, err
		}
		n, perr := strconv.Atoi(tok)
		if perr != nil {
			return nil, syntaxErr("invalid occurrence count %q", tok)
		}
		repeat.Count = n
		if err := p.expect("times"); err != nil {
			return nil, err
		}
	case "until":
		until, err := p.date("until date")
		if err != nil {
			return nil, err
		}
		repeat.Until = until
	default:
		return nil, syntaxErr("expected \"for\" or \"until\" after the weekday set")
	}
	return repeat, nil
}

func (p *parser) parseEdit() (Command, error) {
	switch strings.ToLower(p.next()) {
	case "calendar":
		cmd := Command{Kind: KindEditCalendar}
		if err := p.expect("--name"); err != nil {
			return Command{}, err
		}
		name, err := p.need("calendar name")
		if err != nil {
			return Command{}, err
		}
		cmd.CalendarName = name
		if err := p.expect("--property"); err != nil {
			return Command{}, err
		}
		prop, err := p.need("property name")
		if err != nil {
			return Command{}, err
		}
		cmd.Property = strings.ToLower(prop)
		value, err := p.need("property value")
		if err != nil {
			return Command{}, err
		}
		cmd.Value = value
		return cmd, p.done()

	case "event":
		cmd := Command{Kind: KindEditSingle}
		prop, err := p.need("property name")
		if err != nil {
			return Command{}, err
		}
		cmd.Property = prop
		subject, err := p.need("event subject")
		if err != nil {
			return Command{}, err
		}
		cmd.Subject = subject
		if err := p.expect("from"); err != nil {
			return Command{}, err
		}
		start, err := p.dateTime("start date-time")
		if err != nil {
			return Command{}, err
		}
		cmd.Start = start
		if err := p.expect("to"); err != nil {
			return Command{}, err
		}
		end, err := p.dateTime("end date-time")
		if err != nil {
			return Command{}, err
		}
		cmd.End = end
		if err := p.expect("with"); err != nil {
			return Command{}, err
		}
		value, err := p.need("new value")
		if err != nil {
			return Command{}, err
		}
		cmd.Value = value
		return cmd, p.done()

	case "events":
		prop, err := p.need("property name")
		if err != nil {
			return Command{}, err
		}
		subject, err := p.need("event subject")
		if err != nil {
			return Command{}, err
		}
		// Two forms: "... from <dt> with <value>" and "... <value>".
		if strings.EqualFold(p.peek(), "from") {
			p.next()
			start, err := p.dateTime("start date-time")
			if err != nil {
				return Command{}, err
			}
			if err := p.expect("with"); err != nil {
				return Command{}, err
			}
			value, err := p.need("new value")
			if err != nil {
				return Command{}, err
			}
			return Command{Kind: KindEditFromDate, Property: prop, Subject: subject, Start: start, Value: value}, p.done()
		}
		value, err := p.need("new value")
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindEditAll, Property: prop, Subject: subject, Value: value}, p.done()

	default:
		return Command{}, syntaxErr("expected \"calendar\", \"event\" or \"events\" after edit")
	}
}

func (p *parser) parseUse() (Command, error) {
	if err := p.expect("calendar"); err != nil {
		return Command{}, err
	}
	if err := p.expect("--name"); err != nil {
		return Command{}, err
	}
	name, err := p.need("calendar name")
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: KindUseCalendar, CalendarName: name}, p.done()
}

func (p *parser) parseCopy() (Command, error) {
	switch strings.ToLower(p.next()) {
	case "event":
		cmd := Command{Kind: KindCopyEvent}
		subject, err := p.need("event subject")
		if err != nil {
			return Command{}, err
		}
		cmd.Subject = subject
		if err := p.expect("on"); err != nil {
			return Command{}, err
		}
		start, err := p.dateTime("source date-time")
		if err != nil {
			return Command{}, err
		}
		cmd.Start = start
		if err := p.expect("--target"); err != nil {
			return Command{}, err
		}
		target, err := p.need("target calendar")
		if err != nil {
			return Command{}, err
		}
		cmd.Target = target
		if err := p.expect("to"); err != nil {
			return Command{}, err
		}
		targetStart, err := p.dateTime("target date-time")
		if err != nil {
			return Command{}, err
		}
		cmd.TargetStart = targetStart
		return cmd, p.done()

	case "events":
		switch strings.ToLower(p.next()) {
		case "on":
			cmd := Command{Kind: KindCopyEventsOn}
			date, err := p.date("source date")
			if err != nil {
				return Command{}, err
			}
			cmd.Date = date
			if err := p.expect("--target"); err != nil {
				return Command{}, err
			}
			target, err := p.need("target calendar")
			if err != nil {
				return Command{}, err
			}
			cmd.Target = target
			if err := p.expect("to"); err != nil {
				return Command{}, err
			}
			targetDate, err := p.date("target date")
			if err != nil {
				return Command{}, err
			}
			cmd.TargetStart = targetDate
			return cmd, p.done()

		case "between":
			cmd := Command{Kind: KindCopyEventsBetween}
			from, err := p.date("range start date")
			if err != nil {
				return Command{}, err
			}
			cmd.RangeStart = from
			if err := p.expect("and"); err != nil {
				return Command{}, err
			}
			to, err := p.date("range end date")
			if err != nil {
				return Command{}, err
			}
			cmd.RangeEnd = to
			if err := p.expect("--target"); err != nil {
				return Command{}, err
			}
			target, err := p.need("target calendar")
			if err != nil {
				return Command{}, err
			}
			cmd.Target = target
			if err := p.expect("to"); err != nil {
				return Command{}, err
			}
			targetDate, err := p.date("target date")
			if err != nil {
				return Command{}, err
			}
			cmd.TargetStart = targetDate
			return cmd, p.done()

		default:
			return Command{}, syntaxErr("expected \"on\" or \"between\" after copy events")
		}

	default:
		return Command{}, syntaxErr("expected \"event\" or \"events\" after copy")
	}
}

func (p *parser) parsePrint() (Command, error) {
	if err := p.expect("events"); err != nil {
		return Command{}, err
	}
	switch strings.ToLower(p.next()) {
	case "on":
		date, err := p.date("date")
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindPrintOn, Date: date}, p.done()
	case "from":
		start, err := p.dateTime("range start")
		if err != nil {
			return Command{}, err
		}
		if err := p.expect("to"); err != nil {
			return Command{}, err
		}
		end, err := p.dateTime("range end")
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindPrintRange, RangeStart: start, RangeEnd: end}, p.done()
	default:
		return Command{}, syntaxErr("expected \"on\" or \"from\" after print events")
	}
}

func (p *parser) parseShow() (Command, error) {
	if err := p.expect("status"); err != nil {
		return Command{}, err
	}
	if err := p.expect("on"); err != nil {
		return Command{}, err
	}
	at, err := p.dateTime("date-time")
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: KindShowStatus, Start: at}, p.done()
}

// tokenize splits on whitespace, honoring double-quoted tokens so subjects
// and values may contain spaces.
func tokenize(line string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	hasCur := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			hasCur = true
		case !inQuote && (r == ' ' || r == '\t'):
			if hasCur {
				tokens = append(tokens, cur.String())
				cur.Reset()
				hasCur = false
			}
		default:
			cur.WriteRune(r)
			hasCur = true
		}
	}
	if inQuote {
		return nil, syntaxErr("unterminated quote")
	}
	if hasCur {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}

func syntaxErr(format string, args ...any) error {
	return calerr.Wrapf(calerr.ErrInvalidEvent, "%s", fmt.Sprintf(format, args...))
}
