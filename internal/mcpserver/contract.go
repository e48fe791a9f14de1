package mcpserver

// SpeciesFormatContract describes the knowledge-base record format that
// LLM consumers should follow when adding or updating species.
const SpeciesFormatContract = `# Tree Bank Species Record Contract

Every species record stored in the knowledge base MUST follow this
structure. The backing file (species.json) is human-editable JSON; the
same shape applies to the add_species tool.

## Structure

` + "```" + `json
{
  "name": "Mango",
  "scientific_name": "Mangifera indica",
  "notes": "Free-text growing and identification notes.",
  "care_tips": [
    "Water deeply but infrequently once established."
  ],
  "carbon_factor": 12.5,
  "value_multiplier": 1.2,
  "is_native": true
}
` + "```" + `

## Rules

1. **` + "`" + `name` + "`" + ` is required** and is the lookup key. Matching is
   case-insensitive and substring-based, so prefer the common English
   name without qualifiers ("Mango", not "ripe mango tree").
2. **` + "`" + `carbon_factor` + "`" + `** is kg CO2 absorbed per year by a reference-height
   specimen. Omit it (or pass 0) to fall back to the generic baseline of 15.
3. **` + "`" + `value_multiplier` + "`" + `** scales monetary valuations. Omit it to have
   it derived from the carbon factor (factor / 15).
4. **` + "`" + `is_native` + "`" + `** marks locally native species; native trees earn a
   1.5x valuation multiplier and the higher flat biodiversity value.
5. **` + "`" + `care_tips` + "`" + `** is a list of short imperative sentences. An empty
   list is replaced with a generic watering tip.
6. Adding a record under an existing name **replaces it completely**;
   there is no field-level merge.
`
