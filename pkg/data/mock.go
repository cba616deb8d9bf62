package data

import (
	"context"
	"strings"
)

const mockSourceName = "mock"

var mockRecords = []*Record{
	{RegNumber: "5093077", Name: "FIXGO", RegDate: "2016-12-06", Owner: "深圳市飞构科技有限公司", Classes: []string{"009"}},
	{RegNumber: "6288192", Name: "AI-MAX", RegDate: "2021-05-20", Owner: "AI-MAX Technologies Inc.", Classes: []string{"009"}},
	{RegNumber: "3876543", Name: "LUMINA", RegDate: "2010-11-15", Owner: "Lumina Lighting LLC", Classes: []string{"011"}},
	{RegNumber: "4123456", Name: "TORQUEMAX", RegDate: "2012-01-31", Owner: "Torquemax Industrial Corp.", Classes: []string{"007"}},
	{RegNumber: "4567890", Name: "STRIDEX", RegDate: "2014-03-11", Owner: "广州步迅服饰有限公司", Classes: []string{"025"}},
	{RegNumber: "5512345", Name: "BRIGHTHUB", RegDate: "2018-07-24", Owner: "BrightHub Marketing Ltd.", Classes: []string{"035", "009"}},
}

// MockSource serves a fixed in-memory list of registrations.
type MockSource struct {
	records []*Record
}

// NewMockSource returns the built-in demonstration records, or the given
// records when provided.
func NewMockSource(records ...*Record) *MockSource {
	if len(records) == 0 {
		records = mockRecords
	}

	list := make([]*Record, 0, len(records))
	for _, r := range records {
		c := *r
		c.Classes = NormalizeClasses(r.Classes)
		list = append(list, &c)
	}
	sortRecords(list)

	return &MockSource{records: list}
}

func (s *MockSource) Name() string {
	return mockSourceName
}

func (s *MockSource) Search(_ context.Context, c *Criteria) ([]*Record, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return filter(s.records, c), nil
}

func (s *MockSource) Get(_ context.Context, regNumber string) (*Record, error) {
	regNumber = strings.TrimSpace(regNumber)
	for _, r := range s.records {
		if r.RegNumber == regNumber {
			return r, nil
		}
	}
	return nil, ErrNotFound
}
