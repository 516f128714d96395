package snapshot_test

import (
	"testing"

	"cohortboard/internal/application/snapshot"
	"cohortboard/internal/domain/day"
)

func testClock(dom int) day.Clock {
	pinned := day.Day{Year: 2026, Month: 1, Dom: dom}
	return day.Clock{Offset: day.DefaultOffset, Override: &pinned}
}

const statsHeader = "姓名,報名日期,狀態\n"
const respHeader = "時間戳記,電子郵件,姓名,打卡日期,是否完成,今日一句話亮點,萃取法,今日撰寫的文章,想對戰友說的話\n"

func respRow(email, name, date, status string) string {
	return "2026/1/9 下午 9:00:00," + email + "," + name + "," + date + "," + status + ",highlight,ORID,," + "\n"
}

func TestLoad_BuildsRosterAndRecords(t *testing.T) {
	statsCSV := statsHeader + "Alice,2026-01-01,active\nBob,2026-01-01,active\n,,\n"
	respCSV := respHeader +
		respRow("alice@example.com", "Alice", "2026/1/8", "✅ 是，已完成") +
		respRow("bob@example.com", "Bob", "not-a-date", "✅ 是，已完成")

	ds := snapshot.Load(statsCSV, respCSV, testClock(9))

	if len(ds.Roster) != 2 {
		t.Fatalf("roster size = %d, want 2 (empty-name row skipped)", len(ds.Roster))
	}
	if len(ds.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(ds.Records))
	}
	if ds.Records[0].Day.IsZero() {
		t.Error("Alice's date should normalize")
	}
	if !ds.Records[1].Day.IsZero() {
		t.Error("Bob's unparseable date should stay zero")
	}
}

func TestEligibleDays_DedupAndFutureExclusion(t *testing.T) {
	respCSV := respHeader +
		// Same day twice in two formats: one day after dedup.
		respRow("a@x.com", "Alice", "2026/1/5", "✅ 是，已完成") +
		respRow("a@x.com", "Alice", "2026-01-05", "✅ 是，已完成") +
		respRow("a@x.com", "Alice", "2026/1/6", "✅ 是，已完成") +
		// One day past the pinned today: excluded.
		respRow("a@x.com", "Alice", "2026/1/10", "✅ 是，已完成") +
		// Not completed: excluded.
		respRow("a@x.com", "Alice", "2026/1/7", "否")

	ds := snapshot.Load("", respCSV, testClock(9))
	days := ds.EligibleDays()

	if got := len(days["Alice"]); got != 2 {
		t.Errorf("Alice eligible days = %d, want 2 (dedup + future + incomplete filtered)", got)
	}
}

func TestEligibleDays_EmptyDataset(t *testing.T) {
	ds := snapshot.Load("", "", testClock(9))
	if days := ds.EligibleDays(); len(days) != 0 {
		t.Errorf("empty dataset produced %d students", len(days))
	}
}

func TestContactFor(t *testing.T) {
	respCSV := respHeader +
		respRow("alice@example.com", "Alice", "2026/1/5", "✅ 是，已完成") +
		respRow("", "Carol", "2026/1/5", "✅ 是，已完成")

	ds := snapshot.Load("", respCSV, testClock(9))

	if got := ds.ContactFor("Alice"); got != "alice@example.com" {
		t.Errorf("ContactFor(Alice) = %q", got)
	}
	if got := ds.ContactFor("Carol"); got != "" {
		t.Errorf("ContactFor(Carol) = %q, want empty", got)
	}
	if got := ds.ContactFor("Nobody"); got != "" {
		t.Errorf("ContactFor(Nobody) = %q, want empty", got)
	}
}

func TestHolder_Swap(t *testing.T) {
	var h snapshot.Holder
	if h.Get() != nil {
		t.Fatal("holder should start empty")
	}
	first := snapshot.Load("", "", testClock(9))
	h.Set(first)
	if h.Get() != first {
		t.Error("holder did not return the stored snapshot")
	}
	second := snapshot.Load("", "", testClock(10))
	h.Set(second)
	if h.Get() != second {
		t.Error("holder did not swap to the new snapshot")
	}
}
