package similarity

import "github.com/ludo-technologies/variscan/internal/parser"

var statementRules = NewSubSwitch("statements", map[parser.NodeType]Rule{
	parser.NodeBlock:               compareBlock,
	parser.NodeEmpty:               comparePositional,
	parser.NodeBreak:               compareJump,
	parser.NodeContinue:            compareJump,
	parser.NodeTry:                 compareTry,
	parser.NodeSynchronized:        compareSynchronized,
	parser.NodeLabeled:             compareJump,
	parser.NodeSwitchCase:          compareJump,
	parser.NodeLocalVariable:       compareLocalVariable,
	parser.NodeExpressionStatement: compareValueStatement,
	parser.NodeReturn:              compareValueStatement,
	parser.NodeThrow:               compareValueStatement,
	parser.NodeIf:                  compareConditional,
	parser.NodeWhile:               compareConditional,
	parser.NodeDoWhile:             compareConditional,
	parser.NodeSwitch:              compareConditional,
	parser.NodeAssert:              compareConditional,
	parser.NodeFor:                 compareFor,
	parser.NodeForEach:             compareForEach,
	parser.NodeCatch:               compareCatch,
})

var expressionRules = NewSubSwitch("expressions", map[parser.NodeType]Rule{
	parser.NodeIdentifier:  compareIdentifier,
	parser.NodeLiteral:     compareLiteral,
	parser.NodeMethodCall:  structural,
	parser.NodeAssignment:  structural,
	parser.NodeBinary:      structural,
	parser.NodeUnary:       structural,
	parser.NodeNew:         structural,
	parser.NodeCast:        structural,
	parser.NodeConditional: structural,
	parser.NodeFieldAccess: structural,
	parser.NodeArrayAccess: structural,
	parser.NodeLambda:      structural,
	parser.NodeThis:        compareModel,
})

var typeRules = NewSubSwitch("types", map[parser.NodeType]Rule{
	parser.NodeTypeReference: compareTypeReference,
	parser.NodePrimitiveType: comparePrimitiveType,
})

// Nested statements are diff units and are matched separately; statement
// rules look at their own header only.

func comparePositional(sw *Switch, a, b *parser.Node) Verdict {
	return verdictOf(samePosition(a, b))
}

func compareBlock(sw *Switch, a, b *parser.Node) Verdict {
	return verdictOf(samePosition(a, b) && StringsEqual(a.Attr("synthetic"), b.Attr("synthetic")))
}

// compareJump covers break, continue, labels and switch cases: name plus position
func compareJump(sw *Switch, a, b *parser.Node) Verdict {
	return verdictOf(a.Name == b.Name && samePosition(a, b))
}

func compareTry(sw *Switch, a, b *parser.Node) Verdict {
	if !samePosition(a, b) {
		return Dissimilar
	}
	return sw.CompareRole(a, b, parser.RoleInit)
}

func compareSynchronized(sw *Switch, a, b *parser.Node) Verdict {
	if !samePosition(a, b) {
		return Dissimilar
	}
	return sw.CompareRole(a, b, parser.RoleValue)
}

func compareLocalVariable(sw *Switch, a, b *parser.Node) Verdict {
	if a.Name != b.Name || !sameModifiers(a, b) {
		return Dissimilar
	}
	return sw.CompareRoles(a, b, parser.RoleType, parser.RoleInit)
}

func compareValueStatement(sw *Switch, a, b *parser.Node) Verdict {
	return sw.CompareRole(a, b, parser.RoleValue)
}

func compareConditional(sw *Switch, a, b *parser.Node) Verdict {
	return sw.CompareRole(a, b, parser.RoleCondition)
}

func compareFor(sw *Switch, a, b *parser.Node) Verdict {
	return sw.CompareRoles(a, b, parser.RoleInit, parser.RoleCondition, parser.RoleUpdate)
}

func compareForEach(sw *Switch, a, b *parser.Node) Verdict {
	if a.Name != b.Name {
		return Dissimilar
	}
	return sw.CompareRoles(a, b, parser.RoleType, parser.RoleValue)
}

func compareCatch(sw *Switch, a, b *parser.Node) Verdict {
	return sw.CompareRole(a, b, parser.RoleParam)
}

// compareIdentifier compares names and, for bound identifiers, the enclosing
// non-expression containers of the bound declarations.
func compareIdentifier(sw *Switch, a, b *parser.Node) Verdict {
	if a.Name != b.Name {
		return Dissimilar
	}
	ra, okA := a.Ref(parser.RefTarget)
	rb, okB := b.Ref(parser.RefTarget)
	if !okA && !okB {
		return Similar
	}
	if okA != okB {
		return Dissimilar
	}
	if ra.IsProxy() || rb.IsProxy() {
		return sw.CompareReference(ra, rb)
	}
	return sw.SameDeclaration(ra.Target().EnclosingNonExpression(), rb.Target().EnclosingNonExpression())
}

func compareLiteral(sw *Switch, a, b *parser.Node) Verdict {
	return verdictOf(a.Value == b.Value && sameScalars(a, b))
}

func compareTypeReference(sw *Switch, a, b *parser.Node) Verdict {
	if !StringsEqual(a.Attr("dimensions"), b.Attr("dimensions")) {
		return Dissimilar
	}
	_, okA := a.Ref(parser.RefTarget)
	_, okB := b.Ref(parser.RefTarget)
	var v Verdict
	if !okA && !okB {
		v = verdictOf(sw.registry.NormalizeQualified(a.Name) == sw.registry.NormalizeQualified(b.Name))
	} else {
		v = sw.CompareRefs(a, b, parser.RefTarget)
	}
	return v.then(func() Verdict {
		return sw.CompareRole(a, b, parser.RoleArgument)
	})
}

func comparePrimitiveType(sw *Switch, a, b *parser.Node) Verdict {
	return verdictOf(a.Name == b.Name && StringsEqual(a.Attr("dimensions"), b.Attr("dimensions")))
}
