package enums

// ClientKind separates businesses from private customers.
type ClientKind string

const (
	ClientKindCompany    ClientKind = "company"
	ClientKindIndividual ClientKind = "individual"
)

var validClientKinds = []ClientKind{ClientKindCompany, ClientKindIndividual}

func (c ClientKind) IsValid() bool {
	return contains(validClientKinds, c)
}

func ParseClientKind(value string) (ClientKind, error) {
	return parse(validClientKinds, value, "client kind")
}

// PowderFinish describes the surface aspect of a powder reference.
type PowderFinish string

const (
	PowderFinishMatt     PowderFinish = "matt"
	PowderFinishSatin    PowderFinish = "satin"
	PowderFinishGloss    PowderFinish = "gloss"
	PowderFinishTextured PowderFinish = "textured"
	PowderFinishMetallic PowderFinish = "metallic"
)

var validPowderFinishes = []PowderFinish{
	PowderFinishMatt,
	PowderFinishSatin,
	PowderFinishGloss,
	PowderFinishTextured,
	PowderFinishMetallic,
}

func (p PowderFinish) IsValid() bool {
	return contains(validPowderFinishes, p)
}

func ParsePowderFinish(value string) (PowderFinish, error) {
	return parse(validPowderFinishes, value, "powder finish")
}

// StockMovementKind is the direction of a powder stock change.
type StockMovementKind string

const (
	StockMovementIn         StockMovementKind = "in"
	StockMovementOut        StockMovementKind = "out"
	StockMovementAdjustment StockMovementKind = "adjustment"
)

var validStockMovementKinds = []StockMovementKind{StockMovementIn, StockMovementOut, StockMovementAdjustment}

func (s StockMovementKind) IsValid() bool {
	return contains(validStockMovementKinds, s)
}

func ParseStockMovementKind(value string) (StockMovementKind, error) {
	return parse(validStockMovementKinds, value, "stock movement kind")
}

// PhotoStage tags project photos with the moment they were taken.
type PhotoStage string

const (
	PhotoStageBefore PhotoStage = "before"
	PhotoStageAfter  PhotoStage = "after"
	PhotoStageDefect PhotoStage = "defect"
)

var validPhotoStages = []PhotoStage{PhotoStageBefore, PhotoStageAfter, PhotoStageDefect}

func (p PhotoStage) IsValid() bool {
	return contains(validPhotoStages, p)
}

func ParsePhotoStage(value string) (PhotoStage, error) {
	return parse(validPhotoStages, value, "photo stage")
}

// PDFTemplate names a visual theme for generated documents.
type PDFTemplate string

const (
	PDFTemplateClassic PDFTemplate = "classic"
	PDFTemplateModern  PDFTemplate = "modern"
	PDFTemplateMinimal PDFTemplate = "minimal"
)

var validPDFTemplates = []PDFTemplate{PDFTemplateClassic, PDFTemplateModern, PDFTemplateMinimal}

func (p PDFTemplate) IsValid() bool {
	return contains(validPDFTemplates, p)
}

func ParsePDFTemplate(value string) (PDFTemplate, error) {
	return parse(validPDFTemplates, value, "pdf template")
}
