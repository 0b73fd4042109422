package css_test

import (
	"testing"

	"cstyle/css"
)

func TestInterpolate_Lockstep(t *testing.T) {
	got := css.Interpolate(
		[]string{"color:", ";font-size:", "px;"},
		[]css.Value{css.Text("red"), css.Number(12)},
		nil,
	)
	want := "color:red;font-size:12px;"
	if got != want {
		t.Errorf("Interpolate() = %q, want %q", got, want)
	}
}

func TestInterpolate_PriorRuleReference(t *testing.T) {
	prior := map[string]string{
		"cs_base": "color:red; padding:1em;",
	}

	got := css.Interpolate(
		[]string{"", " background:blue;"},
		[]css.Value{css.Text("cs_base")},
		prior,
	)
	want := "color:red; padding:1em; background:blue;"
	if got != want {
		t.Errorf("Interpolate() = %q, want %q", got, want)
	}

	// the prior source mapping is consulted, never modified
	if len(prior) != 1 || prior["cs_base"] != "color:red; padding:1em;" {
		t.Errorf("Interpolate() modified priorSource: %v", prior)
	}
}

func TestInterpolate_OmittedValues(t *testing.T) {
	cases := []struct {
		name  string
		value css.Value
	}{
		{"false", css.Bool(false)},
		{"omitted", css.Omitted()},
		{"empty text", css.Text("")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := css.Interpolate(
				[]string{"color:red;", "background:blue;"},
				[]css.Value{tc.value},
				nil,
			)
			want := "color:red;background:blue;"
			if got != want {
				t.Errorf("Interpolate() = %q, want %q", got, want)
			}
		})
	}
}

func TestInterpolate_TrueRendersLiteral(t *testing.T) {
	got := css.Interpolate(
		[]string{"--enabled:", ";"},
		[]css.Value{css.Bool(true)},
		nil,
	)
	want := "--enabled:true;"
	if got != want {
		t.Errorf("Interpolate() = %q, want %q", got, want)
	}
}

func TestInterpolate_NumberRendering(t *testing.T) {
	cases := []struct {
		num  float64
		want string
	}{
		{12, "margin:12;"},
		{1.5, "margin:1.5;"},
		{0, "margin:0;"},
		{1000000, "margin:1000000;"},
		{1234567.5, "margin:1234567.5;"},
		{0.0000001, "margin:0.0000001;"},
	}
	for _, tc := range cases {
		got := css.Interpolate([]string{"margin:", ";"}, []css.Value{css.Number(tc.num)}, nil)
		if got != tc.want {
			t.Errorf("Interpolate(Number(%v)) = %q, want %q", tc.num, got, tc.want)
		}
	}
}

func TestInterpolate_WhitespaceCompaction(t *testing.T) {
	got := css.Interpolate(
		[]string{"  .a {\n  color : red ;\n}\n"},
		nil,
		nil,
	)
	want := ".a{color:red;}"
	if got != want {
		t.Errorf("Interpolate() = %q, want %q", got, want)
	}
}

func TestInterpolate_DoubledTerminatorCollapses(t *testing.T) {
	// a fragment value already carrying its terminator must not double it
	got := css.Interpolate(
		[]string{"color:red;", ";background:blue;"},
		[]css.Value{css.Text("")},
		nil,
	)
	want := "color:red;background:blue;"
	if got != want {
		t.Errorf("Interpolate() = %q, want %q", got, want)
	}
}

func TestInterpolate_MismatchedLengthsNeverPanic(t *testing.T) {
	// surplus values are ignored, surplus chunks keep appending
	got := css.Interpolate([]string{"a"}, []css.Value{css.Text("x"), css.Text("y")}, nil)
	if got != "ax" {
		t.Errorf("Interpolate() = %q, want %q", got, "ax")
	}

	got = css.Interpolate([]string{"a", "b", "c"}, nil, nil)
	if got != "abc" {
		t.Errorf("Interpolate() = %q, want %q", got, "abc")
	}
}

func TestInterpolate_ThenFlatten(t *testing.T) {
	prior := map[string]string{
		"cs_base": "color:red;",
	}
	nested := css.Interpolate(
		[]string{".btn{", " &:hover{color:", ";}}"},
		[]css.Value{css.Text("cs_base"), css.Text("blue")},
		prior,
	)

	got := css.NewFlattener(nil).Flatten(nested, ".cs_abc")
	want := ".cs_abc .btn{color:red;}\n.cs_abc .btn:hover{color:blue;}"
	if got != want {
		t.Errorf("Flatten(Interpolate()) = %q, want %q", got, want)
	}
}
