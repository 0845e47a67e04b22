/*
Package parser is a parsing-expression-grammar engine for heterogeneous
input: a string, a byte vector, a general vector, or a cons-list, possibly
nested. The same grammar can descend into a nested container when a rule
says so, so one rule may navigate lists containing vectors containing
strings.

Package structure is as follows:

■ value: the tagged-union Value domain (symbol, character, byte, number,
string, vector, list, form) and the Sequence abstraction over it.

■ position: an immutable cursor into a (possibly nested) sequence.

■ expr: the compiled expression tree for a rule body — terminals,
combinators, and rule references.

■ registry: the rule registry, with isolated and inheriting overlay scopes.

■ dynctx: the dynamically scoped Context threaded through evaluation —
external variable bindings, bound parameters, and the in-progress call set
used for left-recursion detection.

■ processor: the result-processor pipeline attached to each rule.

■ engine: the evaluator, the unordered-sequence combinators, the rule
dispatcher (which runs each rule's processor pipeline), and the top-level
driver.

■ trace: tracing hooks for per-rule entry/exit logging.

■ dsl: an external, non-core helper for reading literal Values from text —
not used by the engine itself.

The base package contains the Grammar facade tying the above together and
is the entry point described as "External Interfaces" in the design notes.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package parser
