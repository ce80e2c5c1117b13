package expression

import "testing"

func TestTransformScenarioD(t *testing.T) {
	tr := NewTransformer()
	got := tr.Transform("var a = b*2; var c = a+1; c*10")
	want := "(b*2+1)*10"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestTransformIdempotent(t *testing.T) {
	tr := NewTransformer()
	closed := tr.Transform("a+b")
	again := tr.Transform(closed)
	if closed != again {
		t.Errorf("not idempotent: %q -> %q", closed, again)
	}
}

func TestTransformMemoizes(t *testing.T) {
	tr := NewTransformer()
	input := "var x = 1+2; x*3"
	first := tr.Transform(input)
	second := tr.Transform(input)
	if first != second {
		t.Errorf("memoized result changed: %q vs %q", first, second)
	}
}

func TestTransformSubscriptRewrite(t *testing.T) {
	tr := NewTransformer()
	got := tr.Transform("control_color[1]")
	want := "control_color_1"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestTransformNoVarsPassesThrough(t *testing.T) {
	tr := NewTransformer()
	got := tr.Transform("sourceWidth + control_size*2")
	want := "sourceWidth + control_size*2"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}
