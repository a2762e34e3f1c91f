package service

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// ════════════════════════════════════════════════════════════
// ICS 解析器测试
// ════════════════════════════════════════════════════════════

// 每周一上课 4 次，第 2 周停课
const testICSWeekly = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//Test//EN
BEGIN:VEVENT
UID:math-101
SUMMARY:高等数学
LOCATION:教学楼 A203
DTSTART:20250224T081000Z
DTEND:20250224T100500Z
RRULE:FREQ=WEEKLY;COUNT=4
EXDATE:20250303T081000Z
END:VEVENT
BEGIN:VEVENT
UID:talk-1
SUMMARY:专题讲座
DTSTART:20250305T090000Z
DURATION:PT1H30M
END:VEVENT
END:VCALENDAR`

// 双周课，UNTIL 为仅日期格式
const testICSBiweekly = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//Test//EN
BEGIN:VEVENT
UID:lab-1
SUMMARY:物理实验
DTSTART:20250224T081000Z
DTEND:20250224T100500Z
RRULE:FREQ=WEEKLY;INTERVAL=2;UNTIL=20250324
END:VEVENT
END:VCALENDAR`

const testICSBroken = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//Test//EN
BEGIN:VEVENT
UID:no-summary
DTSTART:20250224T081000Z
DTEND:20250224T100500Z
END:VEVENT
BEGIN:VEVENT
UID:no-end
SUMMARY:缺结束时间
DTSTART:20250224T081000Z
END:VEVENT
BEGIN:VEVENT
UID:inverted
SUMMARY:时间倒置
DTSTART:20250224T100000Z
DTEND:20250224T090000Z
END:VEVENT
END:VCALENDAR`

func TestParseICS_WeeklyWithExDate(t *testing.T) {
	occ, skipped, err := parseICS(strings.NewReader(testICSWeekly), time.UTC, 20)
	if err != nil {
		t.Fatalf("parseICS 失败: %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("期望无跳过事件，实际 %+v", skipped)
	}
	// 高等数学 4 次去掉 03-03，共 3 次；讲座 1 次
	if len(occ) != 4 {
		t.Fatalf("期望 4 个课次，实际 %d", len(occ))
	}

	wantStarts := []string{"2025-02-24T08:10:00Z", "2025-03-10T08:10:00Z", "2025-03-17T08:10:00Z"}
	for i, want := range wantStarts {
		if got := formatTime(occ[i].Start); got != want {
			t.Errorf("第 %d 次开始时间期望 %s，实际 %s", i+1, want, got)
		}
		if occ[i].End.Sub(occ[i].Start) != 115*time.Minute {
			t.Errorf("第 %d 次时长不正确: %v", i+1, occ[i].End.Sub(occ[i].Start))
		}
		if occ[i].Location == nil || *occ[i].Location != "教学楼 A203" {
			t.Errorf("地点不正确: %v", occ[i].Location)
		}
		if len(occ[i].Recurrence) == 0 {
			t.Error("重复课程应记录 recurrence")
		}
	}

	talk := occ[3]
	if talk.Summary != "专题讲座" || talk.End.Sub(talk.Start) != 90*time.Minute {
		t.Errorf("DURATION 解析不正确: %+v", talk)
	}
	if len(talk.Recurrence) != 0 {
		t.Error("单次事件不应记录 recurrence")
	}
}

func TestParseICS_BiweeklyUntilDate(t *testing.T) {
	occ, _, err := parseICS(strings.NewReader(testICSBiweekly), time.UTC, 20)
	if err != nil {
		t.Fatalf("parseICS 失败: %v", err)
	}
	// 02-24, 03-10, 03-24（UNTIL 当天包含在内）
	if len(occ) != 3 {
		t.Fatalf("期望 3 个课次，实际 %d", len(occ))
	}
	if got := formatDate(occ[2].Start); got != "2025-03-24" {
		t.Errorf("最后一次应为 2025-03-24，实际 %s", got)
	}
}

func TestParseICS_HorizonLimitsOpenEndedRule(t *testing.T) {
	ics := strings.Replace(testICSBiweekly, "INTERVAL=2;UNTIL=20250324", "INTERVAL=1", 1)

	occ, _, err := parseICS(strings.NewReader(ics), time.UTC, 3)
	if err != nil {
		t.Fatalf("parseICS 失败: %v", err)
	}
	if len(occ) != 3 {
		t.Errorf("期望展开 3 周，实际 %d", len(occ))
	}
}

func TestParseICS_SkipsBrokenEvents(t *testing.T) {
	occ, skipped, err := parseICS(strings.NewReader(testICSBroken), time.UTC, 20)
	if err != nil {
		t.Fatalf("parseICS 失败: %v", err)
	}
	if len(occ) != 0 {
		t.Errorf("期望无有效课次，实际 %d", len(occ))
	}
	if len(skipped) != 3 {
		t.Fatalf("期望跳过 3 个事件，实际 %d", len(skipped))
	}
	uids := map[string]bool{}
	for _, s := range skipped {
		uids[s.UID] = true
		if s.Reason == "" {
			t.Errorf("跳过原因不应为空: %+v", s)
		}
	}
	for _, uid := range []string{"no-summary", "no-end", "inverted"} {
		if !uids[uid] {
			t.Errorf("缺少跳过记录: %s", uid)
		}
	}
}

const testICSFloating = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//Test//EN
BEGIN:VEVENT
UID:floating
SUMMARY:浮动时间
DTSTART:20250224T081000
DTEND:20250224T100500
END:VEVENT
END:VCALENDAR`

func TestParseICS_FloatingTimeUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)

	occ, _, err := parseICS(strings.NewReader(testICSFloating), loc, 20)
	if err != nil {
		t.Fatalf("parseICS 失败: %v", err)
	}
	if len(occ) != 1 {
		t.Fatalf("期望 1 个课次，实际 %d", len(occ))
	}
	if got := formatTime(occ[0].Start); got != "2025-02-24T00:10:00Z" {
		t.Errorf("浮动时间应按 UTC+8 解释，实际 %s", got)
	}
}

func TestParseICS_Invalid(t *testing.T) {
	_, _, err := parseICS(strings.NewReader("not a calendar"), time.UTC, 20)
	if !errors.Is(err, ErrInvalidICS) {
		t.Errorf("期望 ErrInvalidICS，实际: %v", err)
	}
}

func TestParseICSDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"PT1H30M", 90 * time.Minute, true},
		{"P1D", 24 * time.Hour, true},
		{"P1W", 7 * 24 * time.Hour, true},
		{"PT45S", 45 * time.Second, true},
		{"PT0S", 0, false},
		{"1H", 0, false},
	}
	for _, c := range cases {
		got, ok := parseICSDuration(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("parseICSDuration(%q) = %v,%v，期望 %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}
