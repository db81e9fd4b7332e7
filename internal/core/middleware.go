package core

type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	wrap func(ctx interface{}) error
}

func (w *wrappedCommand) Run(ctx interface{}) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func (w *wrappedCommand) ComponentPrefix() string {
	if cr, ok := w.Command.(ComponentRouter); ok {
		return cr.ComponentPrefix()
	}
	return ""
}

// ApplyMiddlewares wraps cmd so the first middleware runs innermost.
func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}
