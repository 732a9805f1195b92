package domain

import "time"

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

type Toast struct {
	Kind    ToastKind `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

func SuccessToast(message string) Toast {
	return Toast{Kind: ToastSuccess, Message: message, At: time.Now()}
}

func ErrorToast(message string) Toast {
	return Toast{Kind: ToastError, Message: message, At: time.Now()}
}
