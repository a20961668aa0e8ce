package translator

import "hackvm/pkg/vm"

// Translate lowers whole modules, in order, through a single CodeWriter so
// that label uniqueness and function scoping hold across the entire program.
// With bootstrap set the output starts with SP=256 and a call to Sys.init.
func Translate(modules []Module, bootstrap bool) (string, error) {
	w := NewCodeWriter()
	if bootstrap {
		w.WriteBootstrap()
	}
	for _, m := range modules {
		w.SetModule(m.Name)
		p := vm.NewParser(m.Name, m.Source)
		for p.Scan() {
			if err := w.WriteCommand(p.Command()); err != nil {
				return "", err
			}
		}
		if err := p.Err(); err != nil {
			return "", err
		}
	}
	return w.String(), nil
}

// DefinesSysInit reports whether source declares a Sys.init function. The
// driver uses it to decide bootstrap emission for single-file input; a parse
// error here just means no declaration was found before the bad line.
func DefinesSysInit(source string) bool {
	p := vm.NewParser("", source)
	for p.Scan() {
		c := p.Command()
		if c.Type == vm.CmdFunction && c.Label == "Sys.init" {
			return true
		}
	}
	return false
}
