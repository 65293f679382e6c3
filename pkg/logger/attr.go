package logger

import "log/slog"

// Common attribute constructors keep field names consistent across packages.

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}
