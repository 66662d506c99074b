package domain

// ============================================================
// Support / scholarship catalog
// ============================================================

// SupportCategory groups catalog entries.
type SupportCategory string

const (
	SupportScholarship SupportCategory = "장학금/지원금"
	SupportLoan        SupportCategory = "대출 상품"
	SupportLiving      SupportCategory = "생활/복지"
	SupportCareer      SupportCategory = "취업/진로"
	SupportAsset       SupportCategory = "자산 형성"
)

// SupportProgram is one subsidy, scholarship or work program.
type SupportProgram struct {
	ID             string          `json:"id"`
	Category       SupportCategory `json:"category"`
	Title          string          `json:"title"`
	Subtitle       string          `json:"subtitle,omitempty"`
	Institution    string          `json:"institution,omitempty"`
	ApplyPeriod    string          `json:"apply_period,omitempty"`
	Target         string          `json:"target,omitempty"`
	PayMethod      string          `json:"pay_method,omitempty"`
	Content        string          `json:"content,omitempty"`
	ApplicationURL string          `json:"application_url,omitempty"`
	Keywords       []string        `json:"keywords,omitempty"`
	MonthlyValue   int64           `json:"monthly_value"`
}
