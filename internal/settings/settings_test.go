// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package settings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultMatchesDocumentedDefaults(t *testing.T) {
	s := Default()
	assert.Equal(t, "allow", s.DefaultAction)
	assert.Equal(t, "once", s.DefaultDuration)
	assert.Equal(t, 15, s.PromptTimeoutSeconds)
	assert.Equal(t, 1000, s.MaxConnections)
	assert.Equal(t, 500, s.MaxAlerts)
	assert.Equal(t, AskRuleMonitor, s.AskRulePolicy)
	assert.Equal(t, 15*time.Second, s.PromptTimeout())
}

func TestParseAskRulePolicyDefaultsToMonitor(t *testing.T) {
	assert.Equal(t, AskRuleInteractive, ParseAskRulePolicy("interactive"))
	assert.Equal(t, AskRuleMonitor, ParseAskRulePolicy("bogus"))
}
