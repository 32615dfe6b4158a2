package diagnostics

// Diagnostic codes of the semantic analyzer
const (
	// Type checker errors (T prefix)
	ErrTypeMismatch            = "T0001"
	ErrUndefinedSymbol         = "T0002"
	ErrRedeclaredSymbol        = "T0003"
	ErrInvalidOperation        = "T0004"
	ErrNotCallable             = "T0005"
	ErrWrongArgumentCount      = "T0006"
	ErrInvalidAssignment       = "T0007"
	ErrNotIndexable            = "T0008"
	ErrInvalidArraySize        = "T0009"
	ErrFieldNotFound           = "T0010"
	ErrFunctionNotFound        = "T0011"
	ErrInterfaceNotImplemented = "T0012"
	ErrInfiniteSize            = "T0013"
	ErrInvalidCast             = "T0014"
	ErrAmbiguousCall           = "T0015"
	ErrInvalidReturn           = "T0016"
	ErrMissingReturn           = "T0017"
	ErrConstantReassignment    = "T0018"
	ErrInvalidBreak            = "T0019"
	ErrInvalidContinue         = "T0020"
	ErrUnknownType             = "T0021"
	ErrInvalidMethodReceiver   = "T0022"
	ErrUseBeforeInit           = "T0023"
	ErrUnsafeOperation         = "T0024"
	ErrInvalidFallthrough      = "T0025"
	ErrConditionNotBool        = "T0026"
	ErrGenericCondition        = "T0027"
	ErrTemplateArgCount        = "T0028"
	ErrSymbolNotVisible        = "T0029"
	ErrInvalidSymbolName       = "T0030"
	ErrDynNotInferable         = "T0031"
	ErrNotAStruct              = "T0032"

	// Module/Import errors (M prefix)
	ErrModuleNotFound      = "M0001"
	ErrCyclicImport        = "M0002"
	ErrDuplicateImport     = "M0003"
	ErrSymbolNotExported   = "M0004"
	ErrRevisitLimitReached = "M0005"

	// Warnings (W prefix)
	WarnUnreachableCode = "W0001"
	WarnUnusedVariable  = "W0002"
	WarnUnusedParameter = "W0003"
	WarnIdentityCast    = "W0004"
	WarnDiscardedResult = "W0005"
	WarnUnusedImport    = "W0006"
)
