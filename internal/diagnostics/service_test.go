package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suykerbuyk/physics-lens/internal/compliance"
	"github.com/suykerbuyk/physics-lens/internal/patterns"
	"github.com/suykerbuyk/physics-lens/internal/physics"
)

const optimisticWithdraw = `export function WithdrawForm({ balance }: { balance: Balance }) {
  const mutation = useMutation({
    mutationFn: withdraw,
    onMutate: async (amount) => {
      queryClient.setQueryData(['balance'], (b) => b - amount)
    },
  })
  return <button onClick={handleWithdraw}>Withdraw</button>
}`

const unconfirmedDeleteSrc = `function ProjectRow({ id }) {
  return <button onClick={() => deleteProject(id)}>Delete</button>
}`

const confirmedDeleteSrc = `const handleDelete = async () => {
  if (!(await confirm('Delete this project?'))) return
  await deleteProject(id)
}`

func codes(issues []compliance.Issue) []string {
	var out []string
	for _, i := range issues {
		out = append(out, i.Code)
	}
	return out
}

func TestAnalyze_ComponentNameOnly(t *testing.T) {
	s := New()
	r := s.Analyze("WithdrawButton", "")

	assert.Equal(t, "WithdrawButton", r.Component)
	assert.Equal(t, physics.Financial, r.Effect)
	assert.Empty(t, r.Issues)
	assert.True(t, r.Compliant())
	assert.Len(t, r.Suggestions, 4)
	assert.Equal(t, []string{"withdraw", "button"}, r.Signals)
}

func TestAnalyze_UnknownComponentIsStandard(t *testing.T) {
	r := New().Analyze("PrimaryButton", "")
	assert.Equal(t, physics.Standard, r.Effect)
}

func TestAnalyze_OptimisticFinancial(t *testing.T) {
	r := New().Analyze("Form", optimisticWithdraw)

	assert.Equal(t, physics.Financial, r.Effect)
	require.Equal(t, []string{"optimistic-financial"}, codes(r.Issues))
	assert.Equal(t, compliance.SeverityError, r.Issues[0].Severity)
	assert.Equal(t, "line 4", r.Issues[0].Location)
	assert.Contains(t, r.Signals, "withdraw")
}

func TestAnalyze_TypeEvidenceFromSource(t *testing.T) {
	src := `function Row(props: { fee: FeeSchedule }) { return null }`
	r := New().Analyze("ArchiveRow", src)
	assert.Equal(t, physics.Financial, r.Effect)
}

func TestAnalyze_JSXElementIsNotAType(t *testing.T) {
	src := `const handleDelete = async () => {
  if (!(await confirm('Delete this project?'))) return
  await deleteProject(id)
}
return <button onClick={handleDelete}><TokenIcon /> Delete</button>`

	r := New().Analyze("DeleteProjectButton", src)
	assert.Equal(t, physics.Destructive, r.Effect)
	assert.Empty(t, r.Issues)
}

func TestAnalyze_TernaryBranchIsNotAType(t *testing.T) {
	src := `const label = cond ? a : PriceLabel; return <Switch onClick={toggle}/>`
	r := New().Analyze("ThemeToggle", src)
	assert.Equal(t, physics.Local, r.Effect)
}

func TestDeclaredTypes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"property", `{ balance: Balance }`, []string{"Balance"}},
		{"optional property", `type P = { amount?: TokenAmount }`, []string{"TokenAmount"}},
		{"type argument", `const [b, setB] = useState<Balance>(zero)`, []string{"Balance"}},
		{"several arguments", `const fees: Record<string, Fee> = {}`, []string{"Record", "Fee"}},
		{"jsx element", `return (<div><TokenIcon size={3} /></div>)`, nil},
		{"jsx after return", `return<PriceLabel />`, nil},
		{"ternary", `x ? a : PriceLabel`, nil},
		{"ternary member", `x ? props.a : PriceLabel`, nil},
		{"lowercase", `{ id: string }`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, declaredTypes(tt.src))
		})
	}
}

func TestAnalyze_UnconfirmedDelete(t *testing.T) {
	r := New().Analyze("ProjectRow", unconfirmedDeleteSrc)

	assert.Equal(t, physics.Destructive, r.Effect)
	require.Equal(t, []string{"unconfirmed-delete"}, codes(r.Issues))
	assert.Equal(t, compliance.SeverityWarning, r.Issues[0].Severity)
	assert.Equal(t, "line 2", r.Issues[0].Location)
}

func TestAnalyze_ConfirmedDelete(t *testing.T) {
	r := New().Analyze("ProjectRow", confirmedDeleteSrc)
	assert.Equal(t, physics.Destructive, r.Effect)
	assert.Empty(t, r.Issues)
}

func TestAnalyze_DOMCleanupIsNotADelete(t *testing.T) {
	src := `useEffect(() => () => window.removeEventListener('resize', onResize), [])`
	r := New().Analyze("Chart", src)
	assert.Empty(t, r.Issues)
}

func TestAnalyze_CommentedCodeIgnored(t *testing.T) {
	src := "// deleteProject(id)\n/* onMutate + withdraw */\nreturn null"
	r := New().Analyze("Row", src)
	assert.Equal(t, physics.Standard, r.Effect)
	assert.Empty(t, r.Issues)
}

func TestAnalyze_Freshness(t *testing.T) {
	unguarded := "if (query.dataUpdatedAt > 0) render(query.data)"
	r := New().Analyze("PriceTicker", unguarded)
	assert.Equal(t, []string{"unguarded-freshness"}, codes(r.Issues))

	guarded := "useQuery({ queryKey, staleTime: 30_000 })\nif (query.dataUpdatedAt > 0) render(query.data)"
	r = New().Analyze("PriceTicker", guarded)
	assert.Empty(t, r.Issues)
}

func TestEvaluate_ObservedPhysics(t *testing.T) {
	r := New().Evaluate(Request{
		Component: "WithdrawButton",
		Observed: &compliance.Observed{
			Behavioral: compliance.ObservedBehavioral{Sync: compliance.Ptr(physics.Optimistic)},
		},
	})

	assert.False(t, r.Compliant())
	assert.Equal(t, []string{"behavioral-mismatch"}, codes(r.Issues))
	require.Len(t, r.Suggestions, 5)
	assert.Equal(t, "Align runtime physics with the financial profile", r.Suggestions[4])
}

func TestEvaluate_DeclaredTypes(t *testing.T) {
	r := New().Evaluate(Request{Component: "ArchiveButton", Types: []string{"TokenAmount"}})
	assert.Equal(t, physics.Financial, r.Effect)
}

func TestCheckCompliance(t *testing.T) {
	s := New()
	assert.True(t, s.CheckCompliance(physics.Financial, compliance.Observed{
		Behavioral: compliance.ObservedBehavioral{Sync: compliance.Ptr(physics.Pessimistic)},
	}))
	assert.False(t, s.CheckCompliance(physics.Financial, compliance.Observed{
		Behavioral: compliance.ObservedBehavioral{TimingMs: compliance.Ptr(901)},
	}))
}

func TestDiagnose_CustomPatterns(t *testing.T) {
	custom := patterns.Pattern{
		ID:             "modal-trap",
		Name:           "Modal focus trap",
		Keywords:       []string{"modal", "trapped"},
		SymptomPhrases: []string{"cannot close modal"},
		Causes:         []patterns.Cause{{Name: "Escape handler missing", Solution: "Close on Escape"}},
	}
	s := New(WithPatterns(custom))

	assert.Contains(t, s.Diagnose("trapped in a modal"), "Modal focus trap")
	assert.Equal(t, patterns.NoMatchMessage, s.Diagnose("all good"))
	require.NotEmpty(t, s.Match("trapped in a modal"))
}

func TestResult_JSON(t *testing.T) {
	r := New().Analyze("SearchBox", "")
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"effect":"query"`)
	assert.Contains(t, string(data), `"issues":[]`)
}

func TestAnalyzeAll_KeepsOrder(t *testing.T) {
	s := New()
	names := []string{"WithdrawButton", "DeleteAccount", "ArchiveThread", "ThemeToggle", "NavLink", "SearchBox", "Card"}
	want := []physics.Effect{
		physics.Financial, physics.Destructive, physics.SoftDelete, physics.Local,
		physics.Navigation, physics.Query, physics.Standard,
	}

	var reqs []Request
	for _, n := range names {
		reqs = append(reqs, Request{Component: n})
	}

	results, err := s.AnalyzeAll(context.Background(), reqs, 2)
	require.NoError(t, err)
	require.Len(t, results, len(names))
	for i, r := range results {
		assert.Equal(t, names[i], r.Component)
		assert.Equal(t, want[i], r.Effect, fmt.Sprintf("component %s", names[i]))
	}
}

func TestAnalyzeAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().AnalyzeAll(ctx, []Request{{Component: "A"}, {Component: "B"}}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
