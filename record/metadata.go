package record

// Entry is one named value inside a metadata block, in original encounter
// order. Two entries may share a name with different types; ResolveKeys
// makes the flat view unambiguous.
type Entry struct {
	Name  string `msgpack:"n"`
	Value Value  `msgpack:"v"`
}

// ResolveKeys flattens an ordered entry collection into a map with
// unique string keys. The pass is deterministic and order-dependent:
//
//  1. The first occurrence of a name is stored under the bare name.
//  2. On the first collision for that name, both the stored entry and
//     the new one are re-keyed as "name<type>" and the name is marked
//     ambiguous from then on.
//  3. Further entries for an ambiguous name are always stored as
//     "name<type>".
//  4. If a synthesized key already exists (same name, type reused),
//     the brackets escalate ("name<<type>>", "name<<<type>>>", ...)
//     until a free key is found.
//
// The output always has exactly len(entries) keys.
func ResolveKeys(entries []Entry) map[string]Value {
	out := make(map[string]Value, len(entries))
	ambiguous := make(map[string]bool)

	for _, e := range entries {
		if ambiguous[e.Name] {
			out[uniqueKey(out, e.Name, e.Value.TypeName())] = e.Value
			continue
		}
		prev, seen := out[e.Name]
		if !seen {
			out[e.Name] = e.Value
			continue
		}
		// First collision: re-key the bare entry, then place the new one.
		delete(out, e.Name)
		ambiguous[e.Name] = true
		out[uniqueKey(out, e.Name, prev.TypeName())] = prev
		out[uniqueKey(out, e.Name, e.Value.TypeName())] = e.Value
	}

	return out
}

// uniqueKey synthesizes "name<type>", escalating the bracket depth until
// the key is free in out.
func uniqueKey(out map[string]Value, name, typeName string) string {
	lb, rb := "<", ">"
	for {
		key := name + lb + typeName + rb
		if _, exists := out[key]; !exists {
			return key
		}
		lb += "<"
		rb += ">"
	}
}
