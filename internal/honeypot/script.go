package honeypot

import (
	"fmt"
	"html/template"
)

// scriptSrc answers every challenge field of a form when the form is
// submitted. Each answer lives in a hidden input placed directly after its own
// challenge, so several challenges under one parent never share a response.
// Array.from splits on code points, matching Reverse.
const scriptSrc = `<script>
(function () {
    function responseFor(field) {
        var next = field.nextElementSibling;
        if (next && next.tagName === 'INPUT' && next.name === '%[2]s') {
            return next;
        }
        var input = document.createElement('input');
        input.type = 'hidden';
        input.name = '%[2]s';
        field.insertAdjacentElement('afterend', input);
        return input;
    }
    document.addEventListener('submit', function (e) {
        var form = e.target;
        if (!form || !form.querySelectorAll) {
            return;
        }
        var fields = form.querySelectorAll('input[name="%[1]s"]');
        for (var i = 0; i < fields.length; i++) {
            var field = fields[i];
            responseFor(field).value = Array.from(field.value).reverse().join('');
        }
    }, true);
})();
</script>`

var script = template.HTML(fmt.Sprintf(scriptSrc, ChallengeField, ResponseField))

// Script returns the page-level script that answers every honeypot challenge
// on the page. Emit it once per page.
func Script() template.HTML {
	return script
}
