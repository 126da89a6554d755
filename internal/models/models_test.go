package models

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Мягкое удаление есть только у отчётов; активы и справочник выключаются флагом is_active.
func TestSoftDeleteOnlyOnReports(t *testing.T) {
	for _, v := range []any{Asset{}, Vulnerability{}, User{}, Organization{}} {
		_, ok := reflect.TypeOf(v).FieldByName("DeletedAt")
		assert.False(t, ok, "%T", v)
	}
	_, ok := reflect.TypeOf(AuditReport{}).FieldByName("DeletedAt")
	assert.True(t, ok)
}

func TestApplyCriticalityConsistent(t *testing.T) {
	a := Asset{Confidentiality: 3, Integrity: 2, Availability: 1}
	a.ApplyCriticality()
	assert.Equal(t, "2.15", a.CriticalityScore.StringFixed(2))
	assert.True(t, a.CriticalityConsistent())

	a.Confidentiality = 5
	assert.False(t, a.CriticalityConsistent())
}
