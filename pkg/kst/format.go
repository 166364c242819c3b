package kst

import (
	"fmt"
	"time"
)

var (
	weekdaysKo = [7]string{"일", "월", "화", "수", "목", "금", "토"}
	weekdaysEn = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
)

// FormatTime renders t as "HH:mm" in KST.
func FormatTime(t time.Time) string {
	return t.In(Zone).Format("15:04")
}

// FormatDateDot renders t as "yyyy.MM.dd" in KST.
func FormatDateDot(t time.Time) string {
	return t.In(Zone).Format("2006.01.02")
}

// FormatDateShort renders t as "MM.dd" in KST.
func FormatDateShort(t time.Time) string {
	return t.In(Zone).Format("01.02")
}

// FormatDateWithDay renders t as "MM.dd (요일)" with a Korean weekday.
func FormatDateWithDay(t time.Time) string {
	k := t.In(Zone)
	return fmt.Sprintf("%s (%s)", k.Format("01.02"), weekdaysKo[k.Weekday()])
}

// FormatDateWithDayEn renders t as "MM.dd (Mon)" with an English weekday.
func FormatDateWithDayEn(t time.Time) string {
	k := t.In(Zone)
	return fmt.Sprintf("%s (%s)", k.Format("01.02"), weekdaysEn[k.Weekday()])
}

// FormatDateKey renders t as "yyyy-MM-dd" in KST, used for URL parameters
// and bucket keys.
func FormatDateKey(t time.Time) string {
	return t.In(Zone).Format("2006-01-02")
}

// FormatCurrentTimeKorean renders the status-bar label
// "M월 D일 (요일) hh:mm AM/PM", e.g. "12월 19일 (목) 02:30 PM".
func FormatCurrentTimeKorean(t time.Time) string {
	k := t.In(Zone)
	hours := k.Hour()
	ampm := "AM"
	if hours >= 12 {
		ampm = "PM"
	}
	hour12 := hours % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return fmt.Sprintf("%d월 %d일 (%s) %02d:%02d %s",
		int(k.Month()), k.Day(), weekdaysKo[k.Weekday()], hour12, k.Minute(), ampm)
}
