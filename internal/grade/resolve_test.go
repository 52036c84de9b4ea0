package grade

import (
	"image"
	"image/color"
	"testing"

	"github.com/inkscale/marksheet/internal/catalog"
	"github.com/inkscale/marksheet/internal/mark"
)

// testCatalog builds a catalog with questions 1..questions, four options
// each, laid out one question per row.
func testCatalog(questions int, answers map[int]catalog.Label) *catalog.Catalog {
	labels := []catalog.Label{"A", "B", "C", "D"}
	c := &catalog.Catalog{CorrectAnswers: answers}
	for q := 1; q <= questions; q++ {
		for i, l := range labels {
			c.Regions = append(c.Regions, catalog.Region{
				ID:       regionID(q, l),
				Question: q,
				Option:   l,
				X:        float64(10 + i*20),
				Y:        float64(10 + (q-1)*20),
				W:        10,
				H:        10,
			})
		}
	}
	return c
}

func regionID(q int, l catalog.Label) string {
	return string(rune('0'+q)) + string(l)
}

// createSheet creates an all-white raster.
func createSheet(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	return img
}

// markOption paints the full extent of one option region black.
func markOption(img *image.RGBA, c *catalog.Catalog, q int, l catalog.Label) {
	r, ok := c.FindRegion(regionID(q, l))
	if !ok {
		panic("markOption: no such region")
	}
	bounds := img.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	x1 := int(r.X / 100 * w)
	y1 := int(r.Y / 100 * h)
	x2 := int((r.X + r.W) / 100 * w)
	y2 := int((r.Y + r.H) / 100 * h)
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.Set(x, y, color.RGBA{0, 0, 0, 255})
		}
	}
}

func TestResolve_SingleMark(t *testing.T) {
	c := testCatalog(1, map[int]catalog.Label{1: "A"})
	p := mark.DefaultPolicy()

	for _, l := range []catalog.Label{"A", "B", "C", "D"} {
		t.Run(string(l), func(t *testing.T) {
			img := createSheet(400, 400)
			markOption(img, c, 1, l)

			verdicts := Resolve(img, c, p)
			if len(verdicts) != 1 {
				t.Fatalf("expected 1 verdict, got %d", len(verdicts))
			}
			v := verdicts[0]
			if v.Answer != l {
				t.Errorf("answer: got %q, want %q", v.Answer, l)
			}
			if v.Ambiguous {
				t.Error("single mark reported as ambiguous")
			}
		})
	}
}

func TestResolve_NoMark(t *testing.T) {
	c := testCatalog(2, map[int]catalog.Label{1: "A", 2: "B"})
	img := createSheet(400, 400)

	verdicts := Resolve(img, c, mark.DefaultPolicy())
	if len(verdicts) != 2 {
		t.Fatalf("expected 2 verdicts, got %d", len(verdicts))
	}
	for _, v := range verdicts {
		if v.Answer != "" {
			t.Errorf("question %d: blank sheet produced answer %q", v.Question, v.Answer)
		}
		if v.Ambiguous {
			t.Errorf("question %d: blank sheet reported ambiguous", v.Question)
		}
	}
}

func TestResolve_Ambiguous(t *testing.T) {
	tests := []struct {
		name  string
		marks []catalog.Label
	}{
		{"two adjacent", []catalog.Label{"A", "B"}},
		{"two apart", []catalog.Label{"A", "D"}},
		{"three", []catalog.Label{"A", "B", "C"}},
		{"all four", []catalog.Label{"A", "B", "C", "D"}},
	}

	c := testCatalog(1, map[int]catalog.Label{1: "A"})
	p := mark.DefaultPolicy()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createSheet(400, 400)
			for _, l := range tt.marks {
				markOption(img, c, 1, l)
			}

			verdicts := Resolve(img, c, p)
			v := verdicts[0]
			if v.Answer != "" {
				t.Errorf("ambiguous question produced answer %q", v.Answer)
			}
			if !v.Ambiguous {
				t.Error("multiple marks not reported as ambiguous")
			}
		})
	}
}

func TestResolve_QuestionsIndependent(t *testing.T) {
	c := testCatalog(3, map[int]catalog.Label{1: "A", 2: "B", 3: "C"})
	img := createSheet(400, 400)
	markOption(img, c, 1, "D")
	markOption(img, c, 3, "B")
	markOption(img, c, 3, "C")

	verdicts := Resolve(img, c, mark.DefaultPolicy())
	if len(verdicts) != 3 {
		t.Fatalf("expected 3 verdicts, got %d", len(verdicts))
	}

	want := []Verdict{
		{Question: 1, Answer: "D", Ambiguous: false},
		{Question: 2, Answer: "", Ambiguous: false},
		{Question: 3, Answer: "", Ambiguous: true},
	}
	for i, v := range verdicts {
		if v != want[i] {
			t.Errorf("verdict %d: got %+v, want %+v", i, v, want[i])
		}
	}
}

func TestResolve_AscendingOrder(t *testing.T) {
	// Catalog order deliberately scrambled.
	c := &catalog.Catalog{
		Regions: []catalog.Region{
			{ID: "3a", Question: 3, Option: "A", X: 10, Y: 50, W: 10, H: 10},
			{ID: "1a", Question: 1, Option: "A", X: 10, Y: 10, W: 10, H: 10},
			{ID: "2a", Question: 2, Option: "A", X: 10, Y: 30, W: 10, H: 10},
			{ID: "1b", Question: 1, Option: "B", X: 30, Y: 10, W: 10, H: 10},
			{ID: "3b", Question: 3, Option: "B", X: 30, Y: 50, W: 10, H: 10},
			{ID: "2b", Question: 2, Option: "B", X: 30, Y: 30, W: 10, H: 10},
		},
	}
	img := createSheet(300, 300)

	verdicts := Resolve(img, c, mark.DefaultPolicy())
	if len(verdicts) != 3 {
		t.Fatalf("expected 3 verdicts, got %d", len(verdicts))
	}
	for i, v := range verdicts {
		if v.Question != i+1 {
			t.Errorf("verdict %d: question %d out of order", i, v.Question)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	c := testCatalog(2, map[int]catalog.Label{1: "A", 2: "C"})
	img := createSheet(400, 400)
	markOption(img, c, 1, "A")
	markOption(img, c, 2, "B")
	markOption(img, c, 2, "C")
	p := mark.DefaultPolicy()

	first := Resolve(img, c, p)
	for i := 0; i < 3; i++ {
		again := Resolve(img, c, p)
		if len(again) != len(first) {
			t.Fatalf("run %d: verdict count changed", i)
		}
		for j := range first {
			if again[j] != first[j] {
				t.Errorf("run %d verdict %d: got %+v, want %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestGradeSheet_EndToEnd(t *testing.T) {
	c := testCatalog(2, map[int]catalog.Label{1: "A", 2: "C"})
	img := createSheet(400, 400)
	markOption(img, c, 1, "A")
	markOption(img, c, 2, "B")
	markOption(img, c, 2, "C")

	report := GradeSheet(img, c, mark.DefaultPolicy(), "sheet-1")

	if report.StudentID != "sheet-1" {
		t.Errorf("student id: got %q", report.StudentID)
	}
	if report.Score != 1 || report.Total != 2 {
		t.Errorf("score: got %d/%d, want 1/2", report.Score, report.Total)
	}
	if report.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
	if len(report.Details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(report.Details))
	}

	q1 := report.Details[0]
	if q1.Question != 1 || q1.StudentAnswer != "A" || q1.CorrectAnswer != "A" || !q1.IsCorrect || q1.IsWarning {
		t.Errorf("question 1 detail wrong: %+v", q1)
	}

	q2 := report.Details[1]
	if q2.Question != 2 || q2.StudentAnswer != "" || q2.CorrectAnswer != "C" || q2.IsCorrect || !q2.IsWarning {
		t.Errorf("question 2 detail wrong: %+v", q2)
	}
}
