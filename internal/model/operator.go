// Copyright (C) 2026 Mediator Authors. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package model

import "strings"

// OperatorType is the matcher kind a Rule's Operator evaluates as.
// Unknown values decode to OperatorSimple per §7's decode-error policy.
type OperatorType string

const (
	OperatorSimple  OperatorType = "simple"
	OperatorRegexp  OperatorType = "regexp"
	OperatorNetwork OperatorType = "network"
	OperatorList    OperatorType = "list"
	OperatorLists   OperatorType = "lists"
)

// ParseOperatorType coerces an arbitrary string into a known
// OperatorType, defaulting to OperatorSimple for anything unrecognized.
func ParseOperatorType(s string) OperatorType {
	switch OperatorType(s) {
	case OperatorSimple, OperatorRegexp, OperatorNetwork, OperatorList, OperatorLists:
		return OperatorType(s)
	default:
		return OperatorSimple
	}
}

// Operand names the field of a Connection an Operator matches against.
// The process.env.<NAME> family is parameterized: the Operand value is
// the full "process.env.<NAME>" string, and EnvVarName extracts <NAME>
// from it.
type Operand string

const (
	OperandProcessPath       Operand = "process.path"
	OperandProcessCommand    Operand = "process.command"
	OperandProcessHashMD5    Operand = "process.hash.md5"
	OperandProcessHashSHA1   Operand = "process.hash.sha1"
	OperandProcessParentPath Operand = "process.parent.path"
	OperandProcessEnvPrefix  Operand = "process.env."
	OperandUserID            Operand = "user.id"
	OperandUserName          Operand = "user.name"
	OperandSourceIP          Operand = "source.ip"
	OperandSourcePort        Operand = "source.port"
	OperandSourceNetwork     Operand = "source.network"
	OperandDestIP            Operand = "dest.ip"
	OperandDestHost          Operand = "dest.host"
	OperandDestPort          Operand = "dest.port"
	OperandDestNetwork       Operand = "dest.network"
	OperandProtocol          Operand = "protocol"
	OperandIfaceIn           Operand = "iface.in"
	OperandIfaceOut          Operand = "iface.out"
	OperandList              Operand = "list"
	OperandListsPrefix       Operand = "lists."
	OperandUnknown           Operand = "unknown"
)

// knownOperands enumerates the fixed (non-parameterized) operand set.
var knownOperands = map[Operand]struct{}{
	OperandProcessPath:       {},
	OperandProcessCommand:    {},
	OperandProcessHashMD5:    {},
	OperandProcessHashSHA1:   {},
	OperandProcessParentPath: {},
	OperandUserID:            {},
	OperandUserName:          {},
	OperandSourceIP:          {},
	OperandSourcePort:        {},
	OperandSourceNetwork:     {},
	OperandDestIP:            {},
	OperandDestHost:          {},
	OperandDestPort:          {},
	OperandDestNetwork:       {},
	OperandProtocol:          {},
	OperandIfaceIn:           {},
	OperandIfaceOut:          {},
	OperandList:              {},
}

// ParseOperand coerces an arbitrary string into a known Operand,
// recognizing the process.env.<NAME> and lists.* parameterized
// families, and defaulting to OperandUnknown for anything else.
func ParseOperand(s string) Operand {
	if _, ok := knownOperands[Operand(s)]; ok {
		return Operand(s)
	}
	if strings.HasPrefix(s, string(OperandProcessEnvPrefix)) && len(s) > len(OperandProcessEnvPrefix) {
		return Operand(s)
	}
	if strings.HasPrefix(s, string(OperandListsPrefix)) && len(s) > len(OperandListsPrefix) {
		return Operand(s)
	}
	return OperandUnknown
}

// EnvVarName returns the <NAME> portion of a process.env.<NAME>
// operand, or "" if this operand is not a parameterized env operand.
func (o Operand) EnvVarName() string {
	if strings.HasPrefix(string(o), string(OperandProcessEnvPrefix)) {
		return string(o)[len(OperandProcessEnvPrefix):]
	}
	return ""
}

// Operator is a matcher: a typed predicate evaluated by the daemon
// against a Connection. Composite operators (type=list/lists) nest
// further Operators in List.
type Operator struct {
	Type      OperatorType
	Operand   Operand
	Data      string
	Sensitive bool
	List      []Operator
}

// NewSimple builds a bare simple operator against operand=data.
func NewSimple(operand Operand, data string) Operator {
	return Operator{Type: OperatorSimple, Operand: operand, Data: data}
}

// NewList wraps a set of operators as a composite list operator, the
// form the prompt broker (§4.3) builds when a user selects more than
// one matcher for a synthesized rule.
func NewList(items ...Operator) Operator {
	return Operator{Type: OperatorList, Operand: OperandList, List: items}
}
