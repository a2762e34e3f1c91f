package service

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/dto"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：将 iCalendar (RFC 5545) 课表展开为逐次上课的时间段。
//
//   - DTSTART/DTEND（或 DURATION）确定单次时间段
//   - FREQ=WEEKLY 的 RRULE 按 INTERVAL/COUNT/UNTIL 展开，最多展开 horizonWeeks 周
//   - 其他频率只取首次
//   - EXDATE 命中的日期跳过
//   - 浮动时间（无 Z、无 TZID）按 loc 解释
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize    = 5 * 1024 * 1024 // 5MB
	icsMaxOccurrences = 1000
)

// icsOccurrence 展开后的单次课程
type icsOccurrence struct {
	UID         string
	Summary     string
	Description *string
	Location    *string
	Start       time.Time
	End         time.Time
	Recurrence  json.RawMessage
}

// parseICS 解析 ICS 内容并展开为单次课程；无法解析的事件记入 skipped
func parseICS(reader io.Reader, loc *time.Location, horizonWeeks int) ([]icsOccurrence, []dto.ICSSkippedEvent, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidICS, err)
	}
	if horizonWeeks < 1 {
		horizonWeeks = 20
	}

	var occurrences []icsOccurrence
	skipped := []dto.ICSSkippedEvent{}

	for _, evt := range cal.Events() {
		uid := propValue(evt, ics.ComponentPropertyUniqueId)
		summary := strings.TrimSpace(propValue(evt, ics.ComponentPropertySummary))
		skip := func(reason string) {
			skipped = append(skipped, dto.ICSSkippedEvent{UID: uid, Summary: summary, Reason: reason})
		}

		if summary == "" {
			skip("缺少课程名称 (SUMMARY)")
			continue
		}
		dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
		if err != nil {
			skip("无法解析开始时间 (DTSTART)")
			continue
		}
		dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
		if err != nil {
			dur, ok := parseICSDuration(propValue(evt, ics.ComponentProperty(ics.PropertyDuration)))
			if !ok {
				skip("缺少结束时间 (DTEND/DURATION)")
				continue
			}
			dtEnd = dtStart.Add(dur)
		}
		if !dtEnd.After(dtStart) {
			skip("结束时间不晚于开始时间")
			continue
		}

		base := icsOccurrence{
			UID:         uid,
			Summary:     summary,
			Description: optionalProp(evt, ics.ComponentPropertyDescription),
			Location:    optionalProp(evt, ics.ComponentPropertyLocation),
		}

		starts := expandStarts(evt, dtStart, loc, horizonWeeks)
		if len(starts) == 0 {
			skip("重复规则未产生任何课次")
			continue
		}
		if len(starts) > 1 {
			base.Recurrence, _ = json.Marshal(map[string]string{
				"source": "ics",
				"uid":    uid,
				"rrule":  propValue(evt, ics.ComponentPropertyRrule),
			})
		}

		length := dtEnd.Sub(dtStart)
		for _, st := range starts {
			if len(occurrences) >= icsMaxOccurrences {
				return nil, nil, fmt.Errorf("%w: 展开后课次超过 %d", ErrInvalidICS, icsMaxOccurrences)
			}
			occ := base
			occ.Start = st.UTC()
			occ.End = st.Add(length).UTC()
			occurrences = append(occurrences, occ)
		}
	}

	return occurrences, skipped, nil
}

// expandStarts 根据 RRULE / EXDATE 计算每次课程的开始时间
func expandStarts(evt *ics.VEvent, dtStart time.Time, loc *time.Location, horizonWeeks int) []time.Time {
	exDates := parseExDates(evt, loc)
	keep := func(t time.Time) bool { return !exDates[t.In(loc).Format("20060102")] }

	rruleProp := evt.GetProperty(ics.ComponentPropertyRrule)
	if rruleProp == nil {
		if keep(dtStart) {
			return []time.Time{dtStart}
		}
		return nil
	}

	rule := parseRRule(rruleProp.Value)
	if rule.freq != "WEEKLY" {
		if keep(dtStart) {
			return []time.Time{dtStart}
		}
		return nil
	}

	interval := rule.interval
	if interval < 1 {
		interval = 1
	}
	horizon := dtStart.AddDate(0, 0, horizonWeeks*7)

	var starts []time.Time
	current := dtStart.In(loc)
	for count := 0; ; count++ {
		if !rule.until.IsZero() && current.After(rule.until) {
			break
		}
		if rule.count > 0 && count >= rule.count {
			break
		}
		if !current.Before(horizon) {
			break
		}
		if keep(current) {
			starts = append(starts, current)
		}
		// 以 loc 日历加 7 天，跨夏令时保持当地时刻
		current = current.AddDate(0, 0, 7*interval)
	}
	return starts
}

// rruleParams RRULE 解析结果
type rruleParams struct {
	freq     string
	interval int
	count    int
	until    time.Time
}

// parseRRule 解析 RRULE 字符串（如 FREQ=WEEKLY;COUNT=16;INTERVAL=1）
func parseRRule(value string) rruleParams {
	r := rruleParams{interval: 1}
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			r.freq = strings.ToUpper(kv[1])
		case "INTERVAL":
			r.interval, _ = strconv.Atoi(kv[1])
		case "COUNT":
			r.count, _ = strconv.Atoi(kv[1])
		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", kv[1])
			if err != nil {
				// 仅日期的 UNTIL 包含当天
				t, err = time.Parse("20060102", kv[1])
				if err == nil {
					t = t.Add(24*time.Hour - time.Second)
				}
			}
			r.until = t
		}
	}
	return r
}

// parseExDates 解析事件中所有 EXDATE（可为逗号分隔的多个值）
func parseExDates(evt *ics.VEvent, loc *time.Location) map[string]bool {
	exDates := make(map[string]bool)
	for _, prop := range evt.Properties {
		if prop.IANAToken != string(ics.ComponentPropertyExdate) {
			continue
		}
		for _, v := range strings.Split(prop.Value, ",") {
			t, err := time.Parse("20060102T150405Z", v)
			if err == nil {
				t = t.In(loc)
			} else if t, err = time.ParseInLocation("20060102T150405", v, loc); err != nil {
				t, err = time.ParseInLocation("20060102", v, loc)
			}
			if err == nil {
				exDates[t.Format("20060102")] = true
			}
		}
	}
	return exDates
}

var icsDurationRe = regexp.MustCompile(`^P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseICSDuration 解析 DURATION（如 PT1H30M、P1D）
func parseICSDuration(v string) (time.Duration, bool) {
	m := icsDurationRe.FindStringSubmatch(strings.TrimPrefix(strings.TrimSpace(v), "+"))
	if m == nil {
		return 0, false
	}
	units := []time.Duration{7 * 24 * time.Hour, 24 * time.Hour, time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, _ := strconv.Atoi(m[i+1])
		d += time.Duration(n) * unit
	}
	return d, d > 0
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return t.In(loc), nil
	}

	// 检查 TZID 参数
	tzLoc := loc
	for k, v := range prop.ICalParameters {
		if strings.EqualFold(k, "TZID") && len(v) > 0 {
			if l, err := time.LoadLocation(v[0]); err == nil {
				tzLoc = l
			}
		}
	}

	for _, layout := range []string{"20060102T150405", "20060102"} {
		if t, err := time.ParseInLocation(layout, val, tzLoc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}

func propValue(evt *ics.VEvent, name ics.ComponentProperty) string {
	if p := evt.GetProperty(name); p != nil {
		return p.Value
	}
	return ""
}

func optionalProp(evt *ics.VEvent, name ics.ComponentProperty) *string {
	v := strings.TrimSpace(propValue(evt, name))
	if v == "" {
		return nil
	}
	return &v
}
