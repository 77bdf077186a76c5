package exam

import (
	"fmt"
	"time"
)

// Catalog holds the mock-exam recipes keyed by certification type,
// preserving declaration order for listing.
type Catalog struct {
	order []string
	specs map[string]MockSpec
}

func NewCatalog(specs ...MockSpec) (*Catalog, error) {
	c := &Catalog{specs: make(map[string]MockSpec, len(specs))}
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.specs[s.CertType]; dup {
			return nil, fmt.Errorf("%w: duplicate cert type %s", ErrInvalidSpec, s.CertType)
		}
		c.order = append(c.order, s.CertType)
		c.specs[s.CertType] = s
	}
	return c, nil
}

func (c *Catalog) Get(certType string) (MockSpec, bool) {
	s, ok := c.specs[certType]
	return s, ok
}

func (c *Catalog) List() []MockSpec {
	out := make([]MockSpec, 0, len(c.order))
	for _, ct := range c.order {
		out = append(out, c.specs[ct])
	}
	return out
}

// DefaultCatalog mirrors the Taiwanese insurance-agent certification
// exams: two dual-section certifications passed on total 140 with a
// per-section floor of 60, and one single-section certification passed
// on 70.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		MockSpec{
			CertType: "life",
			Subject:  "人身保險業務員資格測驗",
			Sections: []SectionSpec{
				{Name: "保險法規", QuestionCount: 100, TimeLimit: 80 * time.Minute},
				{Name: "保險實務", QuestionCount: 50, TimeLimit: 60 * time.Minute},
			},
			Rule: PassRule{Mode: PassModeTotalAndMin, PassTotal: 140, PassMinEach: 60},
		},
		MockSpec{
			CertType: "investment",
			Subject:  "投資型保險商品業務員資格測驗",
			Sections: []SectionSpec{
				{Name: "投資型保險商品概要", QuestionCount: 50, TimeLimit: 50 * time.Minute},
				{Name: "金融體系概述", QuestionCount: 100, TimeLimit: 100 * time.Minute},
			},
			Rule: PassRule{Mode: PassModeTotalAndMin, PassTotal: 140, PassMinEach: 60},
		},
		MockSpec{
			CertType: "foreign-currency",
			Subject:  "外幣收付非投資型保險商品測驗",
			Sections: []SectionSpec{
				{Name: "外幣保險商品", QuestionCount: 50, TimeLimit: 60 * time.Minute},
			},
			Rule: PassRule{Mode: PassModeSingle, PassScore: 70},
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}
