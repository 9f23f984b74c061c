/*
Package domain contains the core value types shared by every layer of the
boardom runtime.

It defines the immutable Event carrier, the argument containers passed to
callables, and the error sentinels used to classify failures. This package is
kept pure and free of dependencies on the engine itself so that state stores,
middleware and adapters can share it.

# Key Entities

  - Event: an immutable named message with positional and keyword arguments.
  - Kwargs / Results: keyword arguments bound for a callable and the ordered
    return values collected from one firing.
  - ErrUsage / ErrNotFound: the two failure categories. Every specific
    sentinel wraps one of them, so callers classify with errors.Is.
*/
package domain
