package templating

type templateSource struct {
	subject string
	body    string
}

// builtinTemplates holds the shipped order templates keyed by BCP 47 tag.
var builtinTemplates = map[string]templateSource{
	"en": {
		subject: `Order {{.OrderRef}} - {{.SupplierName}}`,
		body: `Hello,

please deliver the following order{{with .DeliveryDate}} on {{date .}}{{end}}:

{{range .Lines}}- {{.Quantity}} {{.UnitLabel}} {{.Name}}{{with .PackSize}} ({{.}}){{end}}{{with .UnitPrice}} @ {{money .}}{{end}}
{{end}}
{{- if .Subtotal}}
Subtotal: {{money .Subtotal}} ({{if eq .VATMode "gross"}}incl. VAT{{else}}excl. VAT{{end}})
Delivery: {{money .DeliveryCost}}
Total: {{money .Total}}
{{- else}}
Some items are awaiting price confirmation; totals will follow.
{{- end}}
{{- with .DeliveryAddress}}

Delivery address:
{{.OneLine}}
{{- end}}
{{- with .Notes}}

Notes:
{{.}}
{{- end}}

Kind regards{{with .Contact}}{{with .Name}},
{{.}}{{end}}{{end}}
Order reference: {{.OrderRef}}
`,
	},
	"de": {
		subject: `Bestellung {{.OrderRef}} - {{.SupplierName}}`,
		body: `Guten Tag,

bitte liefern Sie die folgende Bestellung{{with .DeliveryDate}} am {{date .}}{{end}}:

{{range .Lines}}- {{.Quantity}} {{.UnitLabel}} {{.Name}}{{with .PackSize}} ({{.}}){{end}}{{with .UnitPrice}} @ {{money .}}{{end}}
{{end}}
{{- if .Subtotal}}
Zwischensumme: {{money .Subtotal}} ({{if eq .VATMode "gross"}}inkl. MwSt.{{else}}zzgl. MwSt.{{end}})
Lieferkosten: {{money .DeliveryCost}}
Gesamt: {{money .Total}}
{{- else}}
Einige Positionen warten noch auf Preisbestätigung; Summen folgen.
{{- end}}
{{- with .DeliveryAddress}}

Lieferadresse:
{{.OneLine}}
{{- end}}
{{- with .Notes}}

Anmerkungen:
{{.}}
{{- end}}

Mit freundlichen Grüßen{{with .Contact}}{{with .Name}},
{{.}}{{end}}{{end}}
Bestellreferenz: {{.OrderRef}}
`,
	},
}
