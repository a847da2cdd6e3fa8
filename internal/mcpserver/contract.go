package mcpserver

const formatURI = "rosarium://record-format"

// RecordFormatContract describes how care events are recorded and how the
// garden snapshot document is laid out, for LLM consumers that create
// records or hand-edit exports.
const RecordFormatContract = `# Rosarium Record Format

The garden is a list of plants (specimens) and a flat list of care events.
Each event belongs to one specimen and one calendar day.

## Care types

| id         | label         | product | extra fields            |
|------------|---------------|---------|-------------------------|
| pruning    | Pruning       | no      | before/after photos     |
| repot      | Repot         | no      | pot change              |
| soil       | Soil change   | yes     | soil mix                |
| liquid     | Liquid feed   | yes     |                         |
| solid      | Solid feed    | yes     |                         |
| vital      | Vitalizer     | yes     |                         |
| pest       | Pest control  | yes     |                         |
| blooming   | Blooming      | no      |                         |

Call ` + "`" + `list_care_types` + "`" + ` for the products of each type and the soil components.

## Rules

1. **Dates** are ` + "`" + `YYYY-MM-DD` + "`" + ` and must name a real day (2024-02-30 is rejected).
2. **Products** are optional. When given, the product must belong to the event's care type.
3. **Soil mix** is only kept on ` + "`" + `soil` + "`" + ` events, the pot change only on
   ` + "`" + `repot` + "`" + ` events, photos only on ` + "`" + `pruning` + "`" + ` events.
4. **Batch records** create one event per specimen with identical fields.
5. Events on the same day keep the order they were recorded in.
6. Removing a specimen removes all of its events.

## Photos

- Attach via ` + "`" + `attach_photo` + "`" + ` with slot ` + "`" + `before` + "`" + ` or ` + "`" + `after` + "`" + `.
- The url may be a ` + "`" + `data:` + "`" + ` URI or a public http(s) URL.
- Supported formats: png, jpeg, gif, webp. Maximum 10 MB.
- Photos are embedded in the snapshot as base64 data URLs.

## Snapshot document

` + "```" + `json
{
  "roses": [
    {"id": "r1", "name": "Gabriel", "brand": "David Austin (UK)",
     "acquisitionDate": "2024-03-15", "description": ""}
  ],
  "events": [
    {"id": "e1", "roseId": "r1", "date": "2024-04-02", "typeId": "liquid",
     "productId": "hyponex-liquid", "note": "half strength"},
    {"id": "e2", "roseId": "r1", "date": "2024-11-20", "typeId": "soil",
     "soilMix": [{"soilId": "akadama", "value": 6}, {"soilId": "kanuma", "value": 4}]}
  ],
  "settings": {"fontSize": "normal", "highContrast": false}
}
` + "```" + `

- ` + "`" + `specimens` + "`" + ` is accepted in place of ` + "`" + `roses` + "`" + `, and ` + "`" + `specimenId` + "`" + ` in place of ` + "`" + `roseId` + "`" + `.
- Records that break a rule are dropped on import and reported as warnings.
- Imports replace the whole garden. There is no merge.
`
