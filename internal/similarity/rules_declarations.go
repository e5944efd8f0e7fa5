package similarity

import "github.com/ludo-technologies/variscan/internal/parser"

var containerRules = NewSubSwitch("containers", map[parser.NodeType]Rule{
	parser.NodeModel:           compareModel,
	parser.NodeCompilationUnit: compareCompilationUnit,
	parser.NodePackage:         comparePackage,
})

var importRules = NewSubSwitch("imports", map[parser.NodeType]Rule{
	parser.NodeImport: compareImport,
})

var classifierRules = NewSubSwitch("classifiers", map[parser.NodeType]Rule{
	parser.NodeClass:      compareClassifier,
	parser.NodeInterface:  compareClassifier,
	parser.NodeEnum:       compareClassifier,
	parser.NodeAnnotation: compareClassifier,
})

var memberRules = NewSubSwitch("members", map[parser.NodeType]Rule{
	parser.NodeMethod:       compareMethod,
	parser.NodeConstructor:  compareConstructor,
	parser.NodeField:        compareField,
	parser.NodeEnumConstant: compareEnumConstant,
	parser.NodeParameter:    compareParameter,
})

var memberOutlineRules = NewSubSwitch("member-outline", map[parser.NodeType]Rule{
	parser.NodeMethod:       compareMethod,
	parser.NodeConstructor:  compareConstructor,
	parser.NodeField:        compareFieldSignature,
	parser.NodeEnumConstant: compareEnumConstantName,
	parser.NodeParameter:    compareParameter,
})

// Model roots of two forests always correspond
func compareModel(sw *Switch, a, b *parser.Node) Verdict {
	return Similar
}

func compareCompilationUnit(sw *Switch, a, b *parser.Node) Verdict {
	return verdictOf(sw.registry.NormalizeQualified(a.QualifiedName()) == sw.registry.NormalizeQualified(b.QualifiedName()))
}

func comparePackage(sw *Switch, a, b *parser.Node) Verdict {
	return verdictOf(sw.registry.NormalizePackage(a.Name) == sw.registry.NormalizePackage(b.Name))
}

func compareImport(sw *Switch, a, b *parser.Node) Verdict {
	if !StringsEqual(a.Attr("static"), b.Attr("static")) || !StringsEqual(a.Attr("onDemand"), b.Attr("onDemand")) {
		return Dissimilar
	}
	if a.Attr("onDemand") != nil {
		return verdictOf(sw.registry.NormalizePackage(a.Name) == sw.registry.NormalizePackage(b.Name))
	}
	return verdictOf(sw.registry.NormalizeQualified(a.Name) == sw.registry.NormalizeQualified(b.Name))
}

// compareClassifier compares the declaration itself. Members are matched
// on their own.
func compareClassifier(sw *Switch, a, b *parser.Node) Verdict {
	if !sw.SameClassifierName(a.Name, b.Name) || !sameModifiers(a, b) {
		return Dissimilar
	}
	return sw.CompareRole(a, b, parser.RoleSuper)
}

func compareMethod(sw *Switch, a, b *parser.Node) Verdict {
	if a.Name != b.Name || !sameModifiers(a, b) {
		return Dissimilar
	}
	return sw.CompareRoles(a, b, parser.RoleType, parser.RoleParam)
}

// Constructors carry the classifier name, so derived copies rename them too
func compareConstructor(sw *Switch, a, b *parser.Node) Verdict {
	if !sw.SameClassifierName(a.Name, b.Name) || !sameModifiers(a, b) {
		return Dissimilar
	}
	return sw.CompareRole(a, b, parser.RoleParam)
}

func compareFieldSignature(sw *Switch, a, b *parser.Node) Verdict {
	if a.Name != b.Name || !sameModifiers(a, b) {
		return Dissimilar
	}
	return sw.CompareRole(a, b, parser.RoleType)
}

func compareField(sw *Switch, a, b *parser.Node) Verdict {
	return compareFieldSignature(sw, a, b).then(func() Verdict {
		return sw.CompareRole(a, b, parser.RoleInit)
	})
}

func compareEnumConstantName(sw *Switch, a, b *parser.Node) Verdict {
	return verdictOf(a.Name == b.Name)
}

func compareEnumConstant(sw *Switch, a, b *parser.Node) Verdict {
	return compareEnumConstantName(sw, a, b).then(func() Verdict {
		return sw.CompareRole(a, b, parser.RoleArgument)
	})
}

func compareParameter(sw *Switch, a, b *parser.Node) Verdict {
	if a.Name != b.Name || !sameModifiers(a, b) || !StringsEqual(a.Attr("varargs"), b.Attr("varargs")) {
		return Dissimilar
	}
	return sw.CompareRole(a, b, parser.RoleType)
}
