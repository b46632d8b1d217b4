package roster

import (
	"fmt"
	"strings"
)

// Fixed announcement blocks. These strings are part of the channel's
// published format; change them only together with the shop.
const (
	headerSuffix = " 出勤的小精靈有：\n\n"

	hoursWeekend = "\n今日營運時間：\n☀️：12:00 ~ 17:00\n🌍：12:00 ~ 22:00\n🌙：17:00 ~ 22:00\n"
	hoursWeekday = "\n今日營運時間：\n☀️：14:00 ~ 18:00\n🌍：14:00 ~ 22:00\n🌙：18:00 ~ 22:00\n"

	footer = "實際班表以現場為準\n\n線上點拍連結：\nhttps://order.lefiya.com"
)

// Format renders the announcement for one day's roster.
//
// Names are passed through verbatim. The operating-hours block depends only
// on the weekend flag, which the caller derives from the same clock used
// for the send window.
func Format(fairies []Fairy, date string, weekend bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s", date, headerSuffix)

	for _, f := range fairies {
		b.WriteString(f.Name)
		b.WriteString(" ")
		b.WriteString(f.Shift.Emoji())
		b.WriteString("\n")
	}

	if weekend {
		b.WriteString(hoursWeekend)
	} else {
		b.WriteString(hoursWeekday)
	}
	b.WriteString(footer)
	return b.String()
}
