package registry

// PrimitiveKind is the closed set of target-language primitive kinds a FHIR
// primitive type maps to.
type PrimitiveKind string

// The fixed set of target primitive kinds.
const (
	PrimitiveString  PrimitiveKind = "string"
	PrimitiveBool    PrimitiveKind = "bool"
	PrimitiveInt32   PrimitiveKind = "int32"
	PrimitiveInt64   PrimitiveKind = "int64"
	PrimitiveUint32  PrimitiveKind = "uint32"
	PrimitiveDecimal PrimitiveKind = "decimal"
	PrimitiveBytes   PrimitiveKind = "bytes"
)

// GoType returns the Go type that backs a PrimitiveKind. Decimal is
// string-backed precision-preserving via shopspring/decimal rather than a naive float64.
func (k PrimitiveKind) GoType() string {
	switch k {
	case PrimitiveString:
		return "string"
	case PrimitiveBool:
		return "bool"
	case PrimitiveInt32:
		return "int32"
	case PrimitiveInt64:
		return "int64"
	case PrimitiveUint32:
		return "uint32"
	case PrimitiveDecimal:
		return "decimal.Decimal"
	case PrimitiveBytes:
		return "[]byte"
	default:
		return "string"
	}
}

// primitiveTypeMap maps FHIR primitive type codes to PrimitiveKind.
var primitiveTypeMap = map[string]PrimitiveKind{
	"boolean": PrimitiveBool,

	"integer":     PrimitiveInt32,
	"integer64":   PrimitiveInt64,
	"unsignedInt": PrimitiveUint32,
	"positiveInt": PrimitiveUint32,
	"decimal":     PrimitiveDecimal,

	"string":       PrimitiveString,
	"uri":          PrimitiveString,
	"url":          PrimitiveString,
	"canonical":    PrimitiveString,
	"code":         PrimitiveString,
	"oid":          PrimitiveString,
	"id":           PrimitiveString,
	"markdown":     PrimitiveString,
	"uuid":         PrimitiveString,
	"xhtml":        PrimitiveString,
	"instant":      PrimitiveString,
	"date":         PrimitiveString,
	"dateTime":     PrimitiveString,
	"time":         PrimitiveString,

	"base64Binary": PrimitiveBytes,
}

// wellKnownDataTypeRoots are the abstract bases that classify a definition
// as DataType even when not kind=complex-type.
var wellKnownDataTypeRoots = map[string]bool{
	"Element":         true,
	"BackboneElement": true,
	"DataType":        true,
}

// wellKnownResourceRoots are the abstract bases that classify a definition
// as Resource.
var wellKnownResourceRoots = map[string]bool{
	"Resource":       true,
	"DomainResource": true,
}

// IsPrimitiveCode reports whether fhirType names a FHIR primitive.
func IsPrimitiveCode(fhirType string) bool {
	_, ok := primitiveTypeMap[fhirType]
	return ok
}

// PrimitiveKindOf returns the PrimitiveKind for a FHIR primitive type code.
func PrimitiveKindOf(fhirType string) (PrimitiveKind, bool) {
	k, ok := primitiveTypeMap[fhirType]
	return k, ok
}
