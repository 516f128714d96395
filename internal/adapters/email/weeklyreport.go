package email

import (
	"fmt"
	"html/template"
	"strings"
)

// WeekSummary describes the report window shared by every student's email.
type WeekSummary struct {
	WeekNumber    int
	WeekStart     string // YYYY/MM/DD
	WeekEnd       string // YYYY/MM/DD
	TotalStudents int
}

// MethodCount is one extraction-method tally row.
type MethodCount struct {
	Method string
	Count  int
}

// HighlightNote is one dated highlight entry.
type HighlightNote struct {
	Date    string // YYYY/MM/DD
	Content string
}

// StudentReport carries one student's numbers for the weekly email.
type StudentReport struct {
	Name         string
	WeekCheckins int
	WeekRate     int
	Streak       int
	TotalDays    int
	Rank         int
	Milestones   []int // earned thresholds, ascending
	Methods      []MethodCount
	Highlights   []HighlightNote
}

// milestoneBadge is one rendered badge, earned or not.
type milestoneBadge struct {
	Label  string
	Earned bool
}

type reportView struct {
	Week          WeekSummary
	Student       StudentReport
	Encouragement string
	Badges        []milestoneBadge
}

// milestoneLabels renders thresholds in the badge row order.
var milestoneLabels = []struct {
	Threshold int
	Label     string
}{
	{7, "7天"},
	{14, "14天"},
	{21, "21天"},
	{28, "28天"},
	{35, "35天"},
}

// WeeklyReportSubject builds the email subject line for one student.
func WeeklyReportSubject(weekNumber int, studentName string) string {
	return fmt.Sprintf("📊 第 %d 週里程碑報告 - %s", weekNumber, studentName)
}

// TestReportSubject marks a test send so it is never mistaken for the real one.
func TestReportSubject(weekNumber int, studentName string) string {
	return fmt.Sprintf("【測試】第 %d 週里程碑報告 - %s", weekNumber, studentName)
}

// RenderWeeklyReport produces the HTML body for one student's weekly email.
// PRE: student.Name is non-empty
// POST: Returns a self-contained HTML document
func RenderWeeklyReport(student StudentReport, week WeekSummary) (string, error) {
	view := reportView{
		Week:          week,
		Student:       student,
		Encouragement: encouragementFor(student.WeekCheckins),
		Badges:        badgesFor(student.Milestones),
	}

	var sb strings.Builder
	if err := reportTemplate.Execute(&sb, view); err != nil {
		return "", fmt.Errorf("render weekly report: %w", err)
	}
	return sb.String(), nil
}

// encouragementFor picks the closing message by how many days were logged.
func encouragementFor(weekCheckins int) string {
	switch {
	case weekCheckins == 7:
		return "🎉 太棒了！這週完美達成 7/7 天打卡！繼續保持這個好習慣！"
	case weekCheckins >= 5:
		return fmt.Sprintf("💪 做得很好！這週打卡 %d/7 天，再接再厲！", weekCheckins)
	case weekCheckins >= 3:
		return "📈 持續前進中！下週試著挑戰更多天數！"
	case weekCheckins > 0:
		return "🌱 開始總是最難的，下週繼續加油！每一天的記錄都是成長的證明。"
	default:
		return "💙 我們在這裡陪伴你！任何時候都可以重新開始，期待下週看到你的打卡！"
	}
}

func badgesFor(earned []int) []milestoneBadge {
	earnedSet := make(map[int]bool, len(earned))
	for _, m := range earned {
		earnedSet[m] = true
	}
	badges := make([]milestoneBadge, 0, len(milestoneLabels))
	for _, m := range milestoneLabels {
		badges = append(badges, milestoneBadge{Label: m.Label, Earned: earnedSet[m.Threshold]})
	}
	return badges
}

var reportTemplate = template.Must(template.New("weekly_report").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: 'Microsoft JhengHei', 'Noto Sans TC', Arial, sans-serif; background: #F5F7FA;">
  <div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 12px rgba(0,0,0,0.1);">

    <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 30px; text-align: center; color: white;">
      <h1 style="margin: 0; font-size: 28px; font-weight: 900;">📊 第 {{.Week.WeekNumber}} 週里程碑報告</h1>
      <p style="margin: 10px 0 0 0; font-size: 16px; opacity: 0.9;">{{.Week.WeekStart}} ~ {{.Week.WeekEnd}}</p>
    </div>

    <div style="padding: 30px;">

      <div style="margin-bottom: 25px;">
        <h2 style="margin: 0 0 10px 0; font-size: 22px; color: #333;">Hi {{.Student.Name}} 👋</h2>
        <p style="margin: 0; color: #666; font-size: 15px; line-height: 1.6;">這是你本週的學習成果報告！讓我們一起看看你這週的精彩表現～</p>
      </div>

      <div style="display: grid; grid-template-columns: 1fr 1fr; gap: 15px; margin-bottom: 25px;">
        <div style="background: linear-gradient(135deg, #F0F4FF 0%, #E8EFFF 100%); padding: 20px; border-radius: 8px; border: 2px solid #5B7FDB;">
          <div style="font-size: 14px; color: #5B7FDB; margin-bottom: 5px;">📅 本週打卡</div>
          <div style="font-size: 32px; font-weight: 900; color: #333;">{{.Student.WeekCheckins}}<span style="font-size: 18px; color: #999;">/7 天</span></div>
          <div style="font-size: 13px; color: #666; margin-top: 5px;">打卡率：{{.Student.WeekRate}}%</div>
        </div>

        <div style="background: linear-gradient(135deg, #FFF4E8 0%, #FFE8CC 100%); padding: 20px; border-radius: 8px; border: 2px solid #FF9E44;">
          <div style="font-size: 14px; color: #FF9E44; margin-bottom: 5px;">🔥 連續打卡</div>
          <div style="font-size: 32px; font-weight: 900; color: #333;">{{.Student.Streak}}<span style="font-size: 18px; color: #999;"> 天</span></div>
          <div style="font-size: 13px; color: #666; margin-top: 5px;">排名：{{.Student.Rank}}/{{.Week.TotalStudents}}</div>
        </div>
      </div>

      <div style="background: linear-gradient(135deg, #E8FFF0 0%, #CCF5E1 100%); padding: 20px; border-radius: 8px; border: 2px solid #27AE60; margin-bottom: 25px;">
        <div style="font-size: 14px; color: #27AE60; margin-bottom: 5px;">📊 累計打卡</div>
        <div style="font-size: 32px; font-weight: 900; color: #333;">{{.Student.TotalDays}}<span style="font-size: 18px; color: #999;"> 天</span></div>
      </div>

      <div style="margin-bottom: 25px;">
        <h3 style="margin: 0 0 15px 0; font-size: 18px; color: #333; border-bottom: 2px solid #E0E0E0; padding-bottom: 10px;">🏆 里程碑達成</h3>
        <div>{{range .Badges}}{{if .Earned}}<span style="display: inline-block; margin: 4px; padding: 6px 12px; background: #FFD700; color: #333; border-radius: 20px; font-weight: bold;">🏆 {{.Label}}</span> {{else}}<span style="display: inline-block; margin: 4px; padding: 6px 12px; background: #F0F0F0; color: #999; border-radius: 20px;">⭕ {{.Label}}</span> {{end}}{{end}}</div>
      </div>

      <div style="margin-bottom: 25px;">
        <h3 style="margin: 0 0 15px 0; font-size: 18px; color: #333; border-bottom: 2px solid #E0E0E0; padding-bottom: 10px;">📝 本週萃取法使用</h3>
        <table style="width: 100%; border-collapse: collapse; background: white; border: 2px solid #E8EFFF; border-radius: 8px; overflow: hidden;">
          {{if .Student.Methods}}{{range .Student.Methods}}<tr>
            <td style="padding: 8px; border-bottom: 1px solid #E8EFFF;">{{.Method}}</td>
            <td style="padding: 8px; border-bottom: 1px solid #E8EFFF; text-align: center; font-weight: bold; color: #5B7FDB;">{{.Count}} 次</td>
          </tr>{{end}}{{else}}<tr><td colspan="2" style="padding: 8px; color: #999; text-align: center;">本週尚未使用萃取法</td></tr>{{end}}
        </table>
      </div>

      <div style="margin-bottom: 25px;">
        <h3 style="margin: 0 0 15px 0; font-size: 18px; color: #333; border-bottom: 2px solid #E0E0E0; padding-bottom: 10px;">💡 本週亮點回顧</h3>
        {{if .Student.Highlights}}{{range .Student.Highlights}}<div style="margin-bottom: 12px; padding: 12px; background: #F0F4FF; border-left: 4px solid #5B7FDB; border-radius: 4px;">
          <div style="font-size: 12px; color: #666; margin-bottom: 4px;">{{.Date}}</div>
          <div style="font-size: 14px; color: #333; line-height: 1.6;">{{.Content}}</div>
        </div>{{end}}{{else}}<div style="color: #999; text-align: center; padding: 20px;">本週尚無亮點記錄</div>{{end}}
      </div>

      <div style="background: linear-gradient(135deg, #FFF9E5 0%, #FFF2CC 100%); padding: 20px; border-radius: 8px; border: 2px solid #FFC107; text-align: center;">
        <div style="font-size: 16px; color: #333; line-height: 1.8; font-weight: 500;">{{.Encouragement}}</div>
      </div>

    </div>

    <div style="background: #F5F7FA; padding: 20px; text-align: center; border-top: 2px solid #E0E0E0;">
      <p style="margin: 0 0 10px 0; color: #666; font-size: 14px;">繼續加油！我們在這裡陪伴你的每一步 💪</p>
      <p style="margin: 0; color: #999; font-size: 12px;">5週復盤陪跑班 © 知識複利</p>
    </div>

  </div>
</body>
</html>
`))
