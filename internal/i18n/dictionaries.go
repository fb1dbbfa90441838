package i18n

var fr = map[string]string{
	// validation
	"required":       "Requis",
	"invalid":        "Valeur invalide",
	"invalid_email":  "Adresse e-mail invalide",
	"invalid_colour": "Couleur invalide (format #RRGGBB)",
	"too_long":       "Valeur trop longue",
	"must_positive":  "Doit être positif",

	// documents
	"doc.quote":          "Devis",
	"doc.invoice":        "Facture",
	"doc.credit_note":    "Avoir",
	"doc.delivery_note":  "Bon de livraison",
	"doc.number":         "N°",
	"doc.date":           "Date",
	"doc.valid_until":    "Valable jusqu'au",
	"doc.due_date":       "Échéance",
	"doc.client":         "Client",
	"doc.designation":    "Désignation",
	"doc.dimensions":     "Dimensions (mm)",
	"doc.quantity":       "Qté",
	"doc.area":           "Surface (m²)",
	"doc.unit_price":     "PU HT",
	"doc.amount":         "Montant HT",
	"doc.subtotal":       "Sous-total HT",
	"doc.discount":       "Remise",
	"doc.total_ht":       "Total HT",
	"doc.vat":            "TVA",
	"doc.total_ttc":      "Total TTC",
	"doc.amount_paid":    "Déjà réglé",
	"doc.balance":        "Reste à payer",
	"doc.ral":            "Teinte RAL",
	"doc.signature":      "Signature du client",
	"doc.payment_terms":  "Conditions de paiement",
	"doc.late_penalties": "Pénalités de retard : trois fois le taux d'intérêt légal. Indemnité forfaitaire pour frais de recouvrement : 40 €.",
	"doc.vat_number":     "N° TVA",
	"doc.siret":          "SIRET",
	"doc.received_by":    "Reçu par",
	"doc.pieces":         "pièces",

	// statuses
	"status.draft":         "Brouillon",
	"status.sent":          "Envoyé",
	"status.accepted":      "Accepté",
	"status.rejected":      "Refusé",
	"status.expired":       "Expiré",
	"status.converted":     "Facturé",
	"status.paid":          "Payée",
	"status.overdue":       "En retard",
	"status.cancelled":     "Annulée",
	"status.refunded":      "Remboursée",
	"status.disputed":      "Contestée",
	"status.received":      "Réceptionné",
	"status.preparation":   "Préparation",
	"status.coating":       "Poudrage",
	"status.curing":        "Cuisson",
	"status.quality_check": "Contrôle qualité",
	"status.ready":         "Prêt",
	"status.delivered":     "Livré",

	// navigation
	"nav.dashboard": "Tableau de bord",
	"nav.quotes":    "Devis",
	"nav.invoices":  "Factures",
	"nav.clients":   "Clients",
	"nav.projects":  "Chantiers",
	"nav.powders":   "Poudres",
	"nav.ovens":     "Planning four",
	"nav.quality":   "Contrôle qualité",
	"nav.settings":  "Paramètres",
	"nav.ral":       "Nuancier RAL",
	"nav.analytics": "Statistiques",

	// drafts
	"draft.saving": "Enregistrement…",
	"draft.saved":  "Brouillon enregistré",
	"draft.error":  "Échec de l'enregistrement local",

	// quality checklist
	"quality.visual_aspect":     "Aspect visuel",
	"quality.adhesion_crosscut": "Adhérence (quadrillage)",
	"quality.thickness":         "Épaisseur",
	"quality.gloss":             "Brillance",
	"quality.colour_match":      "Conformité teinte",
	"quality.curing":            "Polymérisation",
}

var en = map[string]string{
	"required":       "Required",
	"invalid":        "Invalid value",
	"invalid_email":  "Invalid email address",
	"invalid_colour": "Invalid colour (#RRGGBB format)",
	"too_long":       "Value too long",
	"must_positive":  "Must be positive",

	"doc.quote":          "Quote",
	"doc.invoice":        "Invoice",
	"doc.credit_note":    "Credit note",
	"doc.delivery_note":  "Delivery note",
	"doc.number":         "No.",
	"doc.date":           "Date",
	"doc.valid_until":    "Valid until",
	"doc.due_date":       "Due date",
	"doc.client":         "Customer",
	"doc.designation":    "Description",
	"doc.dimensions":     "Dimensions (mm)",
	"doc.quantity":       "Qty",
	"doc.area":           "Area (m²)",
	"doc.unit_price":     "Unit price",
	"doc.amount":         "Amount excl. VAT",
	"doc.subtotal":       "Subtotal excl. VAT",
	"doc.discount":       "Discount",
	"doc.total_ht":       "Total excl. VAT",
	"doc.vat":            "VAT",
	"doc.total_ttc":      "Total incl. VAT",
	"doc.amount_paid":    "Already paid",
	"doc.balance":        "Balance due",
	"doc.ral":            "RAL colour",
	"doc.signature":      "Customer signature",
	"doc.payment_terms":  "Payment terms",
	"doc.late_penalties": "Late payment penalties: three times the legal interest rate. Fixed recovery fee: €40.",
	"doc.vat_number":     "VAT no.",
	"doc.siret":          "SIRET",
	"doc.received_by":    "Received by",
	"doc.pieces":         "pieces",

	"status.draft":         "Draft",
	"status.sent":          "Sent",
	"status.accepted":      "Accepted",
	"status.rejected":      "Rejected",
	"status.expired":       "Expired",
	"status.converted":     "Invoiced",
	"status.paid":          "Paid",
	"status.overdue":       "Overdue",
	"status.cancelled":     "Cancelled",
	"status.refunded":      "Refunded",
	"status.disputed":      "Disputed",
	"status.received":      "Received",
	"status.preparation":   "Preparation",
	"status.coating":       "Coating",
	"status.curing":        "Curing",
	"status.quality_check": "Quality check",
	"status.ready":         "Ready",
	"status.delivered":     "Delivered",

	"nav.dashboard": "Dashboard",
	"nav.quotes":    "Quotes",
	"nav.invoices":  "Invoices",
	"nav.clients":   "Customers",
	"nav.projects":  "Jobs",
	"nav.powders":   "Powders",
	"nav.ovens":     "Oven planning",
	"nav.quality":   "Quality control",
	"nav.settings":  "Settings",
	"nav.ral":       "RAL chart",
	"nav.analytics": "Analytics",

	"draft.saving": "Saving…",
	"draft.saved":  "Draft saved",
	"draft.error":  "Local save failed",

	"quality.visual_aspect":     "Visual aspect",
	"quality.adhesion_crosscut": "Adhesion (cross-cut)",
	"quality.thickness":         "Film thickness",
	"quality.gloss":             "Gloss",
	"quality.colour_match":      "Colour match",
	"quality.curing":            "Curing",
}
