// Package imports holds the tree-sitter patterns used to list a component's
// module dependencies.
package imports

// Queries matches the module specifier of every static import statement.
//
// It compiles against the TypeScript, TSX and JavaScript grammars, which all
// share the import_statement shape.
//
// Captures:
//   - @import.source - the quoted module specifier
const Queries = `
; import React from 'react';
; import { Button } from "@/components/ui/button";
; import './styles.css';
; import type { Props } from './types';
(import_statement
  source: (string) @import.source
)
`
