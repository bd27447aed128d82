package code

import (
	"errors"
	"fmt"
)

type ErrCode int

const (
	Success     ErrCode = 0
	UnDefineErr ErrCode = iota + 10000
	ParamErr
	RecordNotFound
	UnLogin
	LoginFormatErr
	InvalidToken
	LoginFailed
)

// remote store
const (
	RPCHttpErr ErrCode = iota + 20000
	RPCHttpCodeErr
	RemoteNotFound
	RemoteServerErr
	RemoteTimeout
	RemoteDecodeErr
	Offline
	LoadFailed
	FetchFailed
)

// catalog, import and local data
const (
	NoValidDrugs ErrCode = iota + 30000
	InvalidDrugData
	StorageErr
	MirrorEmpty
	MirrorFormatErr
	ImportFormatErr
	ImportSaveErr
	ExportErr
	RatingOutOfRange
	InvalidRatingKind
	InvalidShortageStatus
	UnknownCommand
	UnknownPage
)

// notify
const (
	NotifyActionAlreadyRegistryErr ErrCode = iota + 40000
	NotifySendMsgErr
)

var messages = map[ErrCode]string{
	Success:        "success",
	UnDefineErr:    "undefined error",
	ParamErr:       "parameter error",
	RecordNotFound: "record not found",
	UnLogin:        "not logged in",
	LoginFormatErr: "authorization header format error",
	InvalidToken:   "invalid token",
	LoginFailed:    "بيانات الدخول غير صحيحة",

	RPCHttpErr:      "remote store request failed",
	RPCHttpCodeErr:  "remote store returned an error status",
	RemoteNotFound:  "البيانات غير موجودة في قاعدة البيانات",
	RemoteServerErr: "خطأ في الخادم، يرجى المحاولة لاحقاً",
	RemoteTimeout:   "انتهت مهلة الاتصال، يرجى المحاولة مرة أخرى",
	RemoteDecodeErr: "لم يتم العثور على بيانات أدوية صحيحة",
	Offline:         "لا يوجد اتصال بالإنترنت، يرجى التحقق من الاتصال",
	LoadFailed:      "خطأ في التحميل",
	FetchFailed:     "فشل في تحميل البيانات",

	NoValidDrugs:          "لم يتم العثور على بيانات صحيحة",
	InvalidDrugData:       "بيانات الدواء غير صالحة",
	StorageErr:            "local storage error",
	MirrorEmpty:           "لا توجد بيانات محلية",
	MirrorFormatErr:       "تنسيق الملف غير صحيح",
	ImportFormatErr:       "ملف غير صالح - يجب أن يكون ملف JSON صحيح",
	ImportSaveErr:         "فشل في حفظ البيانات",
	ExportErr:             "فشل في تصدير البيانات",
	RatingOutOfRange:      "التقييم يجب أن يكون بين 1 و 5",
	InvalidRatingKind:     "invalid rating type",
	InvalidShortageStatus: "invalid shortage status",
	UnknownCommand:        "unknown command",
	UnknownPage:           "unknown page",

	NotifyActionAlreadyRegistryErr: "notify action already registered",
	NotifySendMsgErr:               "notify send message failed",
}

func (c ErrCode) String() string {
	if msg, ok := messages[c]; ok {
		return msg
	}
	return fmt.Sprintf("error code: %d", int(c))
}

func (c ErrCode) Error() string {
	return c.String()
}

func (c ErrCode) Int() int {
	return int(c)
}

func (c ErrCode) WithMsg(msg string) *Error {
	return &Error{Code: c, Msg: msg}
}

func (c ErrCode) WithMsgf(format string, args ...any) *Error {
	return &Error{Code: c, Msg: fmt.Sprintf(format, args...)}
}

// WithCause wraps err but keeps the code's own text as the user message.
func (c ErrCode) WithCause(err error) *Error {
	return &Error{Code: c, cause: err}
}

func (c ErrCode) WithErr(err error) *Error {
	e := &Error{Code: c, cause: err}
	if err != nil {
		e.Msg = err.Error()
	}
	return e
}

// Error is an ErrCode carrying a detail message and an optional cause.
type Error struct {
	Code  ErrCode
	Msg   string
	cause error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Code.String(), e.Msg)
	case e.cause != nil:
		return fmt.Sprintf("%s: %v", e.Code.String(), e.cause)
	default:
		return e.Code.String()
	}
}

// Message is the text shown to users: the detail when set, else the code's text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Msg != "" {
			return e.Msg
		}
		return e.Code.String()
	}
	var c ErrCode
	if errors.As(err, &c) {
		return c.String()
	}
	return err.Error()
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	var c ErrCode
	if errors.As(target, &c) {
		return c == e.Code
	}
	return false
}

// CodeOf extracts the ErrCode from err, UnDefineErr when it carries none.
func CodeOf(err error) ErrCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c ErrCode
	if errors.As(err, &c) {
		return c
	}
	return UnDefineErr
}
