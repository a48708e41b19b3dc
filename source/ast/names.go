package ast

// Reports whether an expression mentions the given variable, other than as the parameter
// of a function literal which shadows it.
func Mentions(node Node, name string) bool {
	switch node := node.(type) {
	case *LValue:
		if node.Name == name {
			return true
		}
	case *FnLiteral:
		for _, p := range node.Params {
			if p == name {
				return false
			}
		}
	}
	for _, child := range node.Children() {
		if Mentions(child, name) {
			return true
		}
	}
	return false
}

// Reports whether any of the lvalue's indices mentions one of the names.
func (lv *LValue) IndexMentions(names ...string) bool {
	for _, child := range lv.Children() {
		for _, name := range names {
			if Mentions(child, name) {
				return true
			}
		}
	}
	return false
}
