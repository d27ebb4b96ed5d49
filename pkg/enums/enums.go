package enums

// declaration of the enums accepted in the config file,
// used for user data validation

import (
	"github.com/orsinium-labs/enum"
)

type InputType enum.Member[string]

var (
	ifl = enum.NewBuilder[string, InputType]()

	InputFile   = ifl.Add(InputType{"file"})
	InputWebcam = ifl.Add(InputType{"webcam"})
	InputIPC    = ifl.Add(InputType{"ipc"})
	// folder of still images, replayed in name order
	InputFolder = ifl.Add(InputType{"folder"})

	InputTypes = ifl.Enum()
)

type LoggingLevel enum.Member[string]

var (
	ll = enum.NewBuilder[string, LoggingLevel]()

	LoggingLevelDebug = ll.Add(LoggingLevel{"debug"})
	LoggingLevelInfo  = ll.Add(LoggingLevel{"info"})
	LoggingLevelWarn  = ll.Add(LoggingLevel{"warn"})
	LoggingLevelError = ll.Add(LoggingLevel{"error"})

	LoggingLevels = ll.Enum()
)

type RecognitionMethod enum.Member[string]

var (
	rm = enum.NewBuilder[string, RecognitionMethod]()

	MethodCasern     = rm.Add(RecognitionMethod{"casern"})
	MethodHermes     = rm.Add(RecognitionMethod{"hermes"})
	MethodJapan      = rm.Add(RecognitionMethod{"japan"})
	MethodColor      = rm.Add(RecognitionMethod{"color"})
	MethodMultiColor = rm.Add(RecognitionMethod{"multicolor"})
	MethodCode       = rm.Add(RecognitionMethod{"code"})

	RecognitionMethods = rm.Enum()
)
