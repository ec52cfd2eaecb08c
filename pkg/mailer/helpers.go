package mailer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// namedDateFormats are the dateformat-style masks accepted by name.
var namedDateFormats = map[string]string{
	"default":        "ddd mmm dd yyyy HH:MM:ss",
	"shortDate":      "m/d/yy",
	"mediumDate":     "mmm d, yyyy",
	"longDate":       "mmmm d, yyyy",
	"fullDate":       "dddd, mmmm d, yyyy",
	"shortTime":      "h:MM TT",
	"mediumTime":     "h:MM:ss TT",
	"longTime":       "h:MM:ss TT Z",
	"isoDate":        "yyyy-mm-dd",
	"isoTime":        "HH:MM:ss",
	"isoDateTime":    "yyyy-mm-dd'T'HH:MM:sso",
	"isoUtcDateTime": "UTC:yyyy-mm-dd'T'HH:MM:ss'Z'",
}

var dateInputLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// FuncMap returns the helpers available to every template.
func FuncMap() map[string]any {
	return map[string]any{
		"formatDate":  FormatDate,
		"formatMoney": FormatMoney,
	}
}

// FormatDate formats a date with a named format or a dateformat mask such as
// "dd.mm.yyyy". A nil date is returned unchanged. Strings are parsed as
// RFC 3339 or ISO dates. A mask prefixed with "UTC:" formats in UTC.
func FormatDate(date any, format ...string) (any, error) {
	t, ok, err := toTime(date)
	if err != nil || !ok {
		return date, err
	}

	mask := "default"
	if len(format) > 0 && format[0] != "" {
		mask = format[0]
	}
	if named, ok := namedDateFormats[mask]; ok {
		mask = named
	}
	if rest, ok := strings.CutPrefix(mask, "UTC:"); ok {
		mask = rest
		t = t.UTC()
	}
	return formatMask(t, mask), nil
}

// FormatMoney renders an integer amount in minor units with two decimals:
// 2550 becomes "25.50". A nil amount is returned unchanged.
func FormatMoney(amount any) (any, error) {
	d, ok, err := toDecimal(amount)
	if err != nil || !ok {
		return amount, err
	}
	return d.Shift(-2).StringFixed(2), nil
}

func toTime(v any) (time.Time, bool, error) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return val, true, nil
	case *time.Time:
		if val == nil {
			return time.Time{}, false, nil
		}
		return *val, true, nil
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range dateInputLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true, nil
			}
		}
		return time.Time{}, false, fmt.Errorf("%w: date %q", ErrUnsupportedValue, val)
	default:
		return time.Time{}, false, fmt.Errorf("%w: date of type %T", ErrUnsupportedValue, v)
	}
}

func toDecimal(v any) (decimal.Decimal, bool, error) {
	switch val := v.(type) {
	case nil:
		return decimal.Decimal{}, false, nil
	case decimal.Decimal:
		return val, true, nil
	case int:
		return decimal.NewFromInt(int64(val)), true, nil
	case int32:
		return decimal.NewFromInt32(val), true, nil
	case int64:
		return decimal.NewFromInt(val), true, nil
	case uint32:
		return decimal.NewFromInt(int64(val)), true, nil
	case uint, uint64:
		return decimal.RequireFromString(fmt.Sprint(val)), true, nil
	case float32:
		return decimal.NewFromFloat32(val), true, nil
	case float64:
		return decimal.NewFromFloat(val), true, nil
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Decimal{}, false, fmt.Errorf("%w: amount %q", ErrUnsupportedValue, val)
		}
		return d, true, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return decimal.Decimal{}, false, fmt.Errorf("%w: amount %q", ErrUnsupportedValue, val)
		}
		return d, true, nil
	default:
		return decimal.Decimal{}, false, fmt.Errorf("%w: amount of type %T", ErrUnsupportedValue, v)
	}
}

// maskTokenMax is the longest run each mask letter forms a token with.
var maskTokenMax = map[byte]int{
	'd': 4, 'm': 4, 'y': 4, 'h': 2, 'H': 2, 'M': 2, 's': 2,
	'l': 1, 'L': 1, 't': 2, 'T': 2, 'Z': 1, 'o': 1, 'S': 1,
}

func formatMask(t time.Time, mask string) string {
	var b strings.Builder
	for i := 0; i < len(mask); {
		c := mask[i]

		if c == '\'' || c == '"' {
			end := strings.IndexByte(mask[i+1:], c)
			if end < 0 {
				b.WriteString(mask[i+1:])
				break
			}
			b.WriteString(mask[i+1 : i+1+end])
			i += end + 2
			continue
		}

		maxLen, ok := maskTokenMax[c]
		if !ok {
			b.WriteByte(c)
			i++
			continue
		}
		n := 1
		for i+n < len(mask) && mask[i+n] == c && n < maxLen {
			n++
		}
		if c == 'y' && n != 2 && n != 4 {
			// Only yy and yyyy are tokens.
			b.WriteString(mask[i : i+n])
			i += n
			continue
		}
		b.WriteString(maskToken(t, c, n))
		i += n
	}
	return b.String()
}

func maskToken(t time.Time, c byte, n int) string {
	pad := func(v int) string {
		if n == 2 {
			return fmt.Sprintf("%02d", v)
		}
		return strconv.Itoa(v)
	}
	hour12 := t.Hour() % 12
	if hour12 == 0 {
		hour12 = 12
	}

	switch c {
	case 'd':
		switch n {
		case 3:
			return t.Format("Mon")
		case 4:
			return t.Format("Monday")
		}
		return pad(t.Day())
	case 'm':
		switch n {
		case 3:
			return t.Format("Jan")
		case 4:
			return t.Format("January")
		}
		return pad(int(t.Month()))
	case 'y':
		if n == 2 {
			return t.Format("06")
		}
		return t.Format("2006")
	case 'h':
		return pad(hour12)
	case 'H':
		return pad(t.Hour())
	case 'M':
		return pad(t.Minute())
	case 's':
		return pad(t.Second())
	case 'l':
		return fmt.Sprintf("%03d", t.Nanosecond()/int(time.Millisecond))
	case 'L':
		return fmt.Sprintf("%02d", t.Nanosecond()/int(10*time.Millisecond))
	case 't', 'T':
		s := "a"
		if t.Hour() >= 12 {
			s = "p"
		}
		if n == 2 {
			s += "m"
		}
		if c == 'T' {
			s = strings.ToUpper(s)
		}
		return s
	case 'Z':
		return t.Format("MST")
	case 'o':
		return t.Format("-0700")
	case 'S':
		return ordinalSuffix(t.Day())
	}
	return ""
}

func ordinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}
