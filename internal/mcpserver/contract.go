package mcpserver

// ProfileFormatContract describes the canonical profile document format
// that LLM consumers should follow when creating or importing profiles.
const ProfileFormatContract = `# Ansuz Profile Format Contract

Every profile stored in Ansuz is a single JSON document plus one metadata
entry in the directory's config.json index.

## Document

` + "```" + `json
{
  "usage_id": "code_agent",          // REQUIRED - logical handle used by the registry
  "model": "claude-sonnet-4-5",      // REQUIRED - model identifier, used as export name
  "provider": "anthropic",           // OPTIONAL - anthropic | openai | gemini | deepseek | ollama | openrouter
  "base_url": "https://...",         // OPTIONAL - override the provider endpoint
  "api_key": "sk-...",               // OPTIONAL, SECRET - omitted when exported without secrets
  "temperature": 0.2,                // OPTIONAL
  "max_output_tokens": 8192,         // OPTIONAL
  "timeout_seconds": 300,            // OPTIONAL
  "custom_context": "..."            // OPTIONAL - operator guidance sent with every request
}
` + "```" + `

## Rules

1. **Profile names** match ` + "`" + `[A-Za-z0-9._-]+` + "`" + `. The names ` + "`" + `.` + "`" + `, ` + "`" + `..` + "`" + ` and
   ` + "`" + `config` + "`" + ` are reserved.
2. **One document per profile**, stored as ` + "`" + `<name>.json` + "`" + ` next to the index.
3. **usage_id is unique** across the whole directory. Two profiles may share
   a model but never a usage id.
4. **api_key is the only secret field.** Read surfaces always mask it; it is
   written to disk only when the save explicitly includes secrets.
5. **Do not edit config.json by hand** while a store is running; use the
   tools below. A hand-edited index is re-validated on reload and a broken
   one is rejected wholesale.

## Tools

- ` + "`" + `list_profiles` + "`" + ` / ` + "`" + `get_profile` + "`" + ` read the directory.
- ` + "`" + `search_profiles` + "`" + ` matches on name, description and model.
- ` + "`" + `list_usage_ids` + "`" + ` shows every resolvable handle, including profiles
  never loaded into memory.
- ` + "`" + `get_default_profile` + "`" + ` / ` + "`" + `set_default_profile` + "`" + ` manage the default binding.
`
