package playerjs

import (
	"errors"
	"testing"
)

const helperObjectSrc = `var Xr={
xK:function(a){a.reverse()},
zk:function(a,b){a.splice(0,b)},
jP:function(a,b){return a.slice(b)},
Qh:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b%a.length]=c},
uu:function(a,b){a.unshift.apply(a,a.splice(b))}};`

func TestBuildOpTable(t *testing.T) {
	table := BuildOpTable(helperObjectSrc)

	want := map[string]OpKind{
		"xK": OpReverse,
		"zk": OpSplice,
		"jP": OpSlice,
		"Qh": OpSwap,
	}
	for name, kind := range want {
		got, ok := table[name]
		if !ok {
			t.Fatalf("member %q not classified", name)
		}
		if got != kind {
			t.Errorf("member %q classified as %v, want %v", name, got, kind)
		}
	}

	// Members matching no known shape must be left out, so calls to them
	// fail parsing instead of being misapplied.
	if _, ok := table["uu"]; ok {
		t.Fatalf("unrecognized member %q should not be in the table", "uu")
	}
}

func TestBuildOpTableQuotedMembers(t *testing.T) {
	src := `var Fm={"rA":function(a,b){a.splice(0,b)},'e9':function(a){a.reverse()}};`
	table := BuildOpTable(src)
	if table["rA"] != OpSplice {
		t.Errorf("quoted member rA = %v, want %v", table["rA"], OpSplice)
	}
	if table["e9"] != OpReverse {
		t.Errorf("quoted member e9 = %v, want %v", table["e9"], OpReverse)
	}
}

func TestParseOps(t *testing.T) {
	table := OpTable{"xK": OpReverse, "zk": OpSplice, "Qh": OpSwap}

	tests := []struct {
		name     string
		body     string
		expected []Operation
	}{
		{
			name: "dot access in textual order",
			body: `function(a){a=a.split("");Xr.xK(a);Xr.Qh(a,3);Xr.zk(a,2);return a.join("")}`,
			expected: []Operation{
				{Kind: OpReverse},
				{Kind: OpSwap, Arg: 3},
				{Kind: OpSplice, Arg: 2},
			},
		},
		{
			name: "bracket access",
			body: `function(a){a=a.split("");Xr["zk"](a,1);Xr['Qh'](a,4);return a.join("")}`,
			expected: []Operation{
				{Kind: OpSplice, Arg: 1},
				{Kind: OpSwap, Arg: 4},
			},
		},
		{
			name: "reverse with dummy argument",
			body: `function(a){a=a.split("");Xr.xK(a,26);return a.join("")}`,
			expected: []Operation{
				{Kind: OpReverse},
			},
		},
		{
			name: "repeated member",
			body: `function(a){a=a.split("");Xr.zk(a,2);Xr.zk(a,2);return a.join("")}`,
			expected: []Operation{
				{Kind: OpSplice, Arg: 2},
				{Kind: OpSplice, Arg: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOps(tt.body, "a", table)
			if err != nil {
				t.Fatalf("ParseOps() error = %v", err)
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("ParseOps() = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("op[%d] = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestParseOpsErrors(t *testing.T) {
	table := OpTable{"xK": OpReverse, "zk": OpSplice}

	tests := []struct {
		name       string
		body       string
		wantMember string
	}{
		{
			name:       "unknown member fails loudly",
			body:       `function(a){a=a.split("");Xr.vJ(a,2);return a.join("")}`,
			wantMember: "vJ",
		},
		{
			name:       "non-literal index argument",
			body:       `function(a){a=a.split("");Xr.zk(a,b);return a.join("")}`,
			wantMember: "zk",
		},
		{
			name: "no helper invocations",
			body: `function(a){return a}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOps(tt.body, "a", table)
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("ParseOps() error = %v, want *ParseError", err)
			}
			if perr.Member != tt.wantMember {
				t.Errorf("ParseError.Member = %q, want %q", perr.Member, tt.wantMember)
			}
		})
	}
}

func TestParseOpsSkipsParamCalls(t *testing.T) {
	// split/join via an indexed separator table puts identifier-argument
	// calls on the parameter itself into the body; those are not helper
	// invocations.
	table := OpTable{"zk": OpSplice}
	body := `function(a){a=a.split(Zg);Xr.zk(a,2);return a.join(Zg)}`
	got, err := ParseOps(body, "a", table)
	if err != nil {
		t.Fatalf("ParseOps() error = %v", err)
	}
	if len(got) != 1 || got[0] != (Operation{Kind: OpSplice, Arg: 2}) {
		t.Fatalf("ParseOps() = %v, want single splice(2)", got)
	}
}
